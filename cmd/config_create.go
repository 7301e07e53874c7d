package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"supplynorm/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

The template configures one example supplier with name, EAN, price, quantity and description
columns. Replace it or add real suppliers with "config supplier add".
If a configuration file is already in use, no new file is written; its suppliers are listed instead.`,
	Example: `
  # Create default config at $HOME/.supplynorm.yaml
  supplynorm config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(cmd.OutOrStdout())
	},
}

// saveDefaultConfig writes the example template unless a config file exists
// and reports the suppliers the resulting file configures.
func saveDefaultConfig(out io.Writer) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(out, "New config file created at: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Config file already exists at: %s\n", configPath)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		fmt.Fprintf(out, "Existing config is invalid: %v\n", err)
		return nil
	}
	describeSuppliers(out, cfg.Suppliers)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
