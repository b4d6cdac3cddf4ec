package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"thread-digest/internal/digest"
	"thread-digest/internal/model"

	"github.com/spf13/cobra"
)

var (
	sumFormat string
	sumTopN   int
	sumStrict bool
)

// summarizeCmd reduces a thread JSON file without touching any network service.
var summarizeCmd = &cobra.Command{
	Use:   "summarize <thread.json>",
	Short: "Summarize a thread file into post_title, post_body and a bounded comment tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var th model.Thread
		if err := json.Unmarshal(raw, &th); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		opts := digestOptions(cfg)
		if sumTopN > 0 {
			opts.TopN = sumTopN
		}
		if sumStrict {
			opts.Strict = true
		}
		res, err := digest.Summarize(th, opts)
		if err != nil {
			return err
		}
		slog.Info("summarize: done",
			"comments", res.Stats.Comments,
			"top_level", len(res.Summary.Children),
			"skipped", res.Stats.Skipped,
			"cycles", res.Stats.Cycles,
			"orphans", res.Stats.Orphans,
		)

		var out []byte
		switch strings.ToLower(sumFormat) {
		case "yaml", "":
			out, err = digest.MarshalYAML(res.Summary)
		case "json":
			out, err = digest.MarshalJSON(res.Summary)
			out = append(out, '\n')
		default:
			return fmt.Errorf("unknown format %q (want yaml or json)", sumFormat)
		}
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&sumFormat, "format", "yaml", "output format: yaml or json")
	summarizeCmd.Flags().IntVar(&sumTopN, "top-n", 0, "top-level comments to keep (default from config)")
	summarizeCmd.Flags().BoolVar(&sumStrict, "strict", false, "fail on malformed comments instead of skipping them")
	rootCmd.AddCommand(summarizeCmd)
}
