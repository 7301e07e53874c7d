package cmd

import "github.com/spf13/cobra"

var configSupplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "Manage supplier column mappings in the config file.",
	Long:  "Add supplier configurations to the suppliers list of the active config file.",
}

func init() {
	configCmd.AddCommand(configSupplierCmd)
}
