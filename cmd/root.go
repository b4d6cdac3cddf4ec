package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"thread-digest/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "thread-digest",
	Short: "Thread Digest CLI",
	Long:  "Reduce discussion threads to bounded summaries and turn them into posts.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	v := viper.GetViper()
	v.SetEnvPrefix("DIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/thread-digest")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	applyEnvFallbacks(&appCfg)
	appCfg.FillDefaults()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: appCfg.App.SlogLevel(),
	})))
}

// bindEnvKeys registers keys that may only come from the environment, since
// Unmarshal ignores AutomaticEnv for keys viper has never seen.
func bindEnvKeys(v *viper.Viper) {
	for _, k := range []string{
		"app.log_level",
		"digest.top_n", "digest.reply_weight", "digest.max_depth", "digest.strict",
		"source.name", "source.boards",
		"llm.provider", "llm.model",
		"openai.api_key", "openai.base_url",
		"gemini.api_key",
		"redis.enabled", "redis.addr", "redis.password",
		"server.addr",
		"worker.enabled",
	} {
		_ = v.BindEnv(k)
	}
}

// applyEnvFallbacks honours the conventional unprefixed variables.
func applyEnvFallbacks(c *config.Config) {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Reddit.UserAgent == "" {
		if u := strings.TrimSpace(os.Getenv("REDDIT_USERNAME")); u != "" {
			c.Reddit.UserAgent = "thread-digest/0.1 (by /u/" + u + ")"
		}
	}
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}
