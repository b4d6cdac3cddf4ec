package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"thread-digest/internal/pipeline"
	"thread-digest/worker"

	"github.com/spf13/cobra"
)

var (
	genCount       int
	genID          string
	genBoards      []string
	genPrompt      string
	genModel       string
	genTemperature float32
	genTopN        int
	genOut         string
)

// generateCmd produces posts from live threads.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate posts from random (or given) threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if genCount < 1 {
			return errors.New("--count must be at least 1")
		}
		if genID != "" && genCount > 1 {
			return errors.New("--id and --count cannot be combined")
		}
		ctx := context.Background()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		req := pipeline.Request{
			Boards:      genBoards,
			TopN:        genTopN,
			Prompt:      genPrompt,
			Model:       genModel,
			Temperature: genTemperature,
		}

		var (
			results []pipeline.Result
			errs    []error
		)
		switch {
		case genID != "":
			res, err := a.service.Post(ctx, genID, req)
			if err != nil {
				return err
			}
			results = append(results, res)
		case genCount == 1:
			res, err := a.service.RandomPost(ctx, req)
			if err != nil {
				return err
			}
			results = append(results, res)
		default:
			results, errs = a.service.Batch(ctx, genCount, req)
		}

		for _, res := range results {
			if genOut != "" {
				path, err := worker.WriteResult(genOut, res, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				continue
			}
			b, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
		}
		if len(errs) > 0 {
			slog.Warn("generate: some posts failed", "failed", len(errs), "succeeded", len(results))
			if len(results) == 0 {
				return errors.Join(errs...)
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVar(&genCount, "count", 1, "number of posts to generate")
	generateCmd.Flags().StringVar(&genID, "id", "", "generate for this submission id instead of a random one")
	generateCmd.Flags().StringSliceVar(&genBoards, "board", nil, "boards to pick from (default from config)")
	generateCmd.Flags().StringVar(&genPrompt, "prompt", "", "custom prompt")
	generateCmd.Flags().StringVar(&genModel, "model", "", "model override")
	generateCmd.Flags().Float32Var(&genTemperature, "temperature", 0, "temperature override")
	generateCmd.Flags().IntVar(&genTopN, "top-n", 0, "top-level comments to keep (default from config)")
	generateCmd.Flags().StringVar(&genOut, "out", "", "write Markdown post files to this directory instead of printing JSON")
	rootCmd.AddCommand(generateCmd)
}
