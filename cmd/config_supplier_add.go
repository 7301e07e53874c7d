package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"supplynorm/config"
)

var configSupplierAddCmd = &cobra.Command{
	Use:   "add <supplier-file>",
	Short: "Add a supplier configuration from a JSON or YAML file.",
	Long: `Read a standalone supplier configuration, validate it and append it to the
suppliers list of the config file. A supplier with the same name (case-insensitive)
must not exist yet.`,
	Example: `
  # Add a supplier mapping to the active config
  supplynorm config supplier add ./suppliers/acme.json

  # Add to a specific config file
  supplynorm config supplier add ./suppliers/beta.yaml --configFile ./supplynorm.yaml
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		supplier, err := config.LoadSupplierFile(args[0])
		if err != nil {
			return err
		}

		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		if _, err := ensureConfigFileWithTemplate(configPath); err != nil {
			return err
		}

		current, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}

		updated, err := appendSupplierToConfigYAML(current, *supplier)
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, updated, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Supplier added successfully.")
		fmt.Fprintf(out, "Config:   %s\n", configPath)
		fmt.Fprintf(out, "Name:     %s\n", supplier.Name)
		fmt.Fprintf(out, "Template: %s\n", supplier.FileTemplate)
		fmt.Fprintf(out, "Columns:  %d\n", len(supplier.Columns))
		return nil
	},
}

func appendSupplierToConfigYAML(content []byte, supplier config.Supplier) ([]byte, error) {
	if strings.TrimSpace(supplier.Name) == "" {
		return nil, fmt.Errorf("supplier name is required")
	}

	doc := map[string]any{}
	if strings.TrimSpace(string(content)) != "" {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	suppliers, err := ensureSliceAny(doc, config.KeySuppliers)
	if err != nil {
		return nil, err
	}

	for _, existing := range suppliers {
		supplierMap, ok := existing.(map[string]any)
		if !ok {
			continue
		}
		existingName, _ := supplierMap["name"].(string)
		if strings.EqualFold(strings.TrimSpace(existingName), strings.TrimSpace(supplier.Name)) {
			return nil, fmt.Errorf("supplier with name %q already exists", supplier.Name)
		}
	}

	entry, err := supplierAsMap(supplier)
	if err != nil {
		return nil, err
	}
	doc[config.KeySuppliers] = append(suppliers, entry)

	updated, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal updated config yaml: %w", err)
	}
	if _, err := config.ValidateYAMLContent(updated); err != nil {
		return nil, fmt.Errorf("updated config is invalid: %w", err)
	}
	return updated, nil
}

// supplierAsMap round-trips through yaml so the entry uses the struct's yaml keys.
func supplierAsMap(supplier config.Supplier) (map[string]any, error) {
	raw, err := yaml.Marshal(supplier)
	if err != nil {
		return nil, fmt.Errorf("marshal supplier %q: %w", supplier.Name, err)
	}
	entry := map[string]any{}
	if err := yaml.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode supplier %q: %w", supplier.Name, err)
	}
	return entry, nil
}

func ensureSliceAny(doc map[string]any, key string) ([]any, error) {
	raw, exists := doc[key]
	if !exists || raw == nil {
		result := []any{}
		doc[key] = result
		return result, nil
	}
	result, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("config key %q must be a list", key)
	}
	return result, nil
}

func init() {
	configSupplierCmd.AddCommand(configSupplierAddCmd)
}
