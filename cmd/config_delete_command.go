package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by supplynorm.

If no configuration file is active, the command returns an error.`,
	Example: `
  # Delete active config
  supplynorm config delete

  # Delete config at a custom path
  supplynorm --configFile ./custom-supplynorm.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := activeConfigPath(cfgFile, viper.ConfigFileUsed())
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		if err := os.Remove(configPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("configuration file not found: %s", configPath)
			}
			return fmt.Errorf("error deleting configuration file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

// activeConfigPath prefers the --configFile flag over the file viper loaded.
func activeConfigPath(flagValue, used string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(used)
}
