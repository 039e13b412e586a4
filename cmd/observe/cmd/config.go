package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brianly1003/observe/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd displays configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display configuration",
	Long: `Display observe configuration.

Examples:
  observe config show      # Show effective config as YAML
  observe config path      # Show config file search locations`,
}

// configShowCmd prints the effective configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return printConfig(cmd, cfg)
	},
}

// configPathCmd shows config file locations.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file locations",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if cfgFile != "" {
			fmt.Fprintf(out, "%s (from --config)\n", cfgFile)
			return
		}

		candidates := []string{"config.yaml"}
		if dir, err := config.GetConfigDir(); err == nil {
			candidates = append(candidates, filepath.Join(dir, "config.yaml"))
		}
		candidates = append(candidates, "/etc/observe/config.yaml")

		for _, p := range candidates {
			status := "missing"
			if _, err := os.Stat(p); err == nil {
				status = "found"
			}
			fmt.Fprintf(out, "%-40s %s\n", p, status)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func printConfig(cmd *cobra.Command, cfg *config.Config) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(content)
	return err
}
