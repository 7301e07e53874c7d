package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadSupplierFile reads a standalone supplier configuration (JSON or YAML).
func LoadSupplierFile(path string) (*Supplier, error) {
	local := viper.New()
	local.SetConfigFile(path)
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "json":
		local.SetConfigType("json")
	case "yaml", "yml":
		local.SetConfigType("yaml")
	default:
		return nil, fmt.Errorf("unsupported supplier config extension for %s (supported: json, yaml)", path)
	}
	if err := local.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read supplier config %s: %w", path, err)
	}

	var supplier Supplier
	if err := local.Unmarshal(&supplier); err != nil {
		return nil, fmt.Errorf("error unmarshaling supplier config %s: %w", path, err)
	}
	normalizeSupplier(&supplier)
	if supplier.Name == "" {
		supplier.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := ValidateSupplier(supplier); err != nil {
		return nil, fmt.Errorf("supplier config %s: %w", path, err)
	}
	return &supplier, nil
}

// MatchSupplierByTemplate returns the first supplier whose file template
// matches the base name or the full path.
func MatchSupplierByTemplate(path string, suppliers []Supplier) (Supplier, bool) {
	baseName := filepath.Base(path)
	for _, supplier := range suppliers {
		template := strings.TrimSpace(supplier.FileTemplate)
		if template == "" {
			continue
		}
		matchesBase, err := filepath.Match(template, baseName)
		if err == nil && matchesBase {
			return supplier, true
		}
		matchesFull, err := filepath.Match(template, path)
		if err == nil && matchesFull {
			return supplier, true
		}
	}
	return Supplier{}, false
}
