/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"supplynorm/config"
	"supplynorm/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "supplynorm",
	Short: "Normalize supplier spreadsheets into product and offer records.",
	Long: `
**********************************************
*              SUPPLY NORM                   *
**********************************************

This CLI reads supplier offer files (Excel, CSV, UTF-16 TSV exports), normalizes every data row
through the supplier's column mapping configuration, stores products and offers in a local SQLite
database and exports them to CSV or Excel.

Supported input formats:
- Excel: .xlsx, .xlsm, .xls
- CSV: .csv
- Tab-separated (UTF-8 or UTF-16): .tsv, .txt
`,
	Example: `
  # Create configuration file
  supplynorm config create

  # Import a supplier file matched by file_template
  supplynorm import -i acme_2025-03.xlsx

  # Import with an explicit supplier configuration file, without storing results
  supplynorm import -i offer.csv --supplier-config ./suppliers/acme.json --dry-run --output ./preview.csv

  # List stored supplier offers
  supplynorm offers list

  # Export all records
  supplynorm export --output ./records.xlsx

  # Export price summary grouped by brand
  supplynorm export --mode price --group-by Brand --output ./brands.csv
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.supplynorm.yaml, then ./.supplynorm.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug|info|warn|error")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	return cmd != nil && cmd.Name() == "import"
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".supplynorm" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".supplynorm")
	}

	viper.SetEnvPrefix("supplynorm")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: supplynorm config create")
	}
}

// newLogger builds the application logger from the logging.* settings; the
// --log-level flag wins over the configured level.
func newLogger() zerolog.Logger {
	level := viper.GetString(config.KeyLoggingLevel)
	if strings.TrimSpace(logLevel) != "" {
		level = logLevel
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: viper.GetString(config.KeyLoggingFormat),
		Output: os.Stderr,
	})
}

// resolveDBPath returns the --db flag value or the configured database path.
func resolveDBPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return viper.GetString(config.KeyDatabasePath)
}
