package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and bootstrap configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging flags, environment variables,
config files and defaults. API keys are masked.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		masked := *cfg
		masked.Providers.Claude.APIKey = maskKey(cfg.Providers.Claude.APIKey)
		masked.Providers.GPT.APIKey = maskKey(cfg.Providers.GPT.APIKey)
		masked.Providers.Gemini.APIKey = maskKey(cfg.Providers.Gemini.APIKey)

		out, err := yaml.Marshal(masked)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		cmd.Print(string(out))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .council.yaml in the current directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		const path = ".council.yaml"
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if err := os.WriteFile(path, out, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		cmd.Printf("wrote %s\n", path)
		return nil
	},
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
