package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"supplynorm/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Supplier column references
and type names are shown in their normalized form.`,
	Example: `
  # Show active configuration
  supplynorm config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return nil
		}

		rendered, err := renderConfigYAML(cfg)
		if err != nil {
			return err
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded; showing defaults.")
		}
		fmt.Println("Configuration:")
		fmt.Print(rendered)
		return nil
	},
}

func renderConfigYAML(cfg *config.Config) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("render config yaml: %w", err)
	}
	return string(out), nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
