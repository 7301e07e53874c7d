package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage supplynorm configuration file values.",
	Long: `Create, edit, display, and delete the supplynorm configuration file.

The configuration stores application-wide values and supplier column mappings:
- database.path
- logging.level / logging.format
- import.persist / import.stop_on_file_error
- suppliers[].name / file_template / data_start_row / columns[]`,
	Example: `
  # Create default config in $HOME/.supplynorm.yaml
  supplynorm config create

  # Show active config and source file
  supplynorm config show

  # Open active config in editor (creates example if missing)
  supplynorm config edit

  # Add a supplier from a standalone JSON/YAML supplier file
  supplynorm config supplier add ./suppliers/acme.json

  # Delete active config file
  supplynorm config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
