package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/revstat/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage revstat configuration",
	Long: heredoc.Doc(`
		Manage revstat configuration files and settings.

		Configuration hierarchy (highest to lowest priority):
		1. CLI flags
		2. Environment variables (REVSTAT_*, e.g. REVSTAT_SENTIMENT_POSITIVE_ABOVE)
		3. Config file (~/.revstat/config.yaml)
		4. Defaults
	`),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(yamlData))

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.revstat/config.yaml with every available option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configPath, err := writeDefaultConfig(dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  revstat config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n", configPath)
		fmt.Fprintf(out, "\n")

		return nil
	},
}

// writeDefaultConfig writes the built-in configuration to dir/config.yaml.
// An existing file is never overwritten.
func writeDefaultConfig(dir string) (string, error) {
	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s\nUse 'revstat config show' to view it, or delete it first to recreate", configPath)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	header := heredoc.Doc(`
		# revstat configuration file
		#
		# Configuration hierarchy (highest to lowest priority):
		#   1. CLI flags
		#   2. Environment variables (REVSTAT_*)
		#   3. This config file
		#   4. Built-in defaults

	`)

	if err := os.WriteFile(configPath, append([]byte(header), yamlData...), 0644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}

	return configPath, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
