package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ppiankov/revstat/internal/logging"
	"github.com/ppiankov/revstat/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "revstat",
	Short: "revstat - App store review analysis",
	Long: heredoc.Doc(`
		revstat analyzes app-store review exports.

		It reads a delimited file of reviews, drops rows with missing or
		malformed values, labels each review positive, neutral or negative
		from its star rating, and reports sentiment per app and per language
		together with summary statistics.

		Sentiment is derived from ratings only; review text is never read.
	`),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of revstat.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "revstat %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.revstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	bindGlobalFlags()

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// bindGlobalFlags binds the persistent flags to viper
func bindGlobalFlags() {
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match REVSTAT_*, e.g. REVSTAT_CACHE_ENABLED
	viper.SetEnvPrefix("REVSTAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env variables can override it
func setDefaults(d *model.Config) {
	viper.SetDefault("input.delimiter", d.Input.Delimiter)
	viper.SetDefault("input.max_bytes", d.Input.MaxBytes)

	viper.SetDefault("cleaning.null_tokens", d.Cleaning.NullTokens)
	viper.SetDefault("cleaning.optional_fields", d.Cleaning.OptionalFields)
	viper.SetDefault("cleaning.date_layouts", d.Cleaning.DateLayouts)

	viper.SetDefault("sentiment.positive_above", d.Sentiment.PositiveAbove)
	viper.SetDefault("sentiment.negative_below", d.Sentiment.NegativeBelow)

	viper.SetDefault("cache.enabled", d.Cache.Enabled)
	viper.SetDefault("cache.dir", d.Cache.Dir)
	viper.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	viper.SetDefault("concurrency.workers", d.Concurrency.Workers)

	viper.SetDefault("output.verbose", d.Output.Verbose)
	viper.SetDefault("output.include_footer", d.Output.IncludeFooter)
	viper.SetDefault("output.include_reviews", d.Output.IncludeReviews)
	viper.SetDefault("output.include_rejections", d.Output.IncludeRejections)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.format", d.Logging.Format)

	viper.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

// bindFlags binds command-local flags to config keys. Binding happens at run
// time because several commands share a key.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// loadConfig resolves the effective configuration and builds the logger
func loadConfig() (*model.Config, zerolog.Logger, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	if cfg.Input.Delimiter == `\t` {
		cfg.Input.Delimiter = "\t"
	}

	if cfg.Output.Verbose && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	return cfg, logger, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".revstat"), nil
}
