package config

import (
	"bytes"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"regexp"
	"strconv"
	"strings"
)

const (
	KeyDatabasePath      = "database.path"
	KeyLoggingLevel      = "logging.level"
	KeyLoggingFormat     = "logging.format"
	KeyImportPersist     = "import.persist"
	KeyImportStopOnError = "import.stop_on_file_error"
	KeySuppliers         = "suppliers"
)

// Classification tags understood by the normalizer.
const (
	ClassificationCoreProduct = "coreProduct"
	ClassificationOffer       = "offer"
)

// SupportedTypes lists the data type names a column rule may declare.
var SupportedTypes = []string{
	"string", "int", "integer", "decimal", "bool", "boolean", "datetime", "date", "time",
}

type Config struct {
	Database  DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logging   LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Import    ImportConfig   `mapstructure:"import" yaml:"import"`
	Suppliers []Supplier     `mapstructure:"suppliers" yaml:"suppliers" validate:"dive"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=console json"`
}

type ImportConfig struct {
	Persist         bool `mapstructure:"persist" yaml:"persist"`
	StopOnFileError bool `mapstructure:"stop_on_file_error" yaml:"stop_on_file_error"`
}

// Supplier is the column mapping configuration for one supplier's files.
type Supplier struct {
	Name         string       `mapstructure:"name" yaml:"name" validate:"required"`
	FileTemplate string       `mapstructure:"file_template" yaml:"file_template,omitempty"`
	DataStartRow int          `mapstructure:"data_start_row" yaml:"data_start_row" validate:"gte=0"`
	Columns      []ColumnRule `mapstructure:"columns" yaml:"columns" validate:"dive"`
}

// ColumnRule maps one source column onto a target property.
type ColumnRule struct {
	Column             string   `mapstructure:"column" yaml:"column" validate:"required"`
	Target             string   `mapstructure:"target" yaml:"target" validate:"required"`
	Type               string   `mapstructure:"type" yaml:"type,omitempty"`
	Transformations    []string `mapstructure:"transformations" yaml:"transformations,omitempty"`
	Default            string   `mapstructure:"default" yaml:"default,omitempty"`
	AllowNull          bool     `mapstructure:"allow_null" yaml:"allow_null,omitempty"`
	Classification     string   `mapstructure:"classification" yaml:"classification,omitempty"`
	Required           bool     `mapstructure:"required" yaml:"required,omitempty"`
	AllowedValues      []string `mapstructure:"allowed_values" yaml:"allowed_values,omitempty"`
	ValidationPatterns []string `mapstructure:"validation_patterns" yaml:"validation_patterns,omitempty"`
	SkipRowOnFailure   bool     `mapstructure:"skip_row_on_failure" yaml:"skip_row_on_failure,omitempty"`
	// DecimalComma reads int and decimal cells as "1.299,50" instead of "1,299.50".
	DecimalComma       bool     `mapstructure:"decimal_comma" yaml:"decimal_comma,omitempty"`
}

// HasDefault reports whether an empty cell should still produce a value.
func (r ColumnRule) HasDefault() bool {
	return strings.TrimSpace(r.Default) != "" || r.AllowNull
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# supplynorm configuration
database:
  path: "./supplynorm.db"

logging:
  level: "info"
  format: "console"

import:
  persist: true
  stop_on_file_error: false

suppliers:
  - name: "example"
    file_template: "example_*.xlsx"
    data_start_row: 1
    columns:
      - column: "A"
        target: "name"
        required: true
        skip_row_on_failure: true
      - column: "B"
        target: "ean"
        transformations: ["removespaces"]
      - column: "C"
        target: "price"
        type: "decimal"
        decimal_comma: true
        classification: "offer"
      - column: "D"
        target: "quantity"
        type: "int"
        classification: "offer"
        default: "0"
      - column: "E"
        target: "description"
`
}

// FindSupplier returns the supplier with the given name (case-insensitive).
func (c Config) FindSupplier(name string) (Supplier, bool) {
	for _, supplier := range c.Suppliers {
		if strings.EqualFold(strings.TrimSpace(supplier.Name), strings.TrimSpace(name)) {
			return supplier, true
		}
	}
	return Supplier{}, false
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	for i := range cfg.Suppliers {
		normalizeSupplier(&cfg.Suppliers[i])
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateSuppliers(cfg.Suppliers); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "./supplynorm.db")
	v.SetDefault(KeyLoggingLevel, "info")
	v.SetDefault(KeyLoggingFormat, "console")
	v.SetDefault(KeyImportPersist, true)
	v.SetDefault(KeyImportStopOnError, false)
	v.SetDefault(KeySuppliers, []map[string]any{})
}

func normalizeSupplier(supplier *Supplier) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	supplier.FileTemplate = strings.TrimSpace(supplier.FileTemplate)
	for i := range supplier.Columns {
		column := &supplier.Columns[i]
		column.Column = strings.ToUpper(strings.TrimSpace(column.Column))
		column.Target = strings.TrimSpace(column.Target)
		column.Type = strings.ToLower(strings.TrimSpace(column.Type))
		column.Classification = strings.TrimSpace(column.Classification)
	}
}

func validateSuppliers(suppliers []Supplier) error {
	seen := make(map[string]struct{}, len(suppliers))
	for i, supplier := range suppliers {
		key := strings.ToLower(supplier.Name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate supplier name %q", supplier.Name)
		}
		seen[key] = struct{}{}
		if err := validateColumns(fmt.Sprintf("suppliers[%d]", i), supplier.Columns); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSupplier checks one supplier configuration, e.g. loaded from a
// standalone file.
func ValidateSupplier(supplier Supplier) error {
	validate := validator.New()
	if err := validate.Struct(supplier); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateColumns("supplier", supplier.Columns)
}

func validateColumns(prefix string, columns []ColumnRule) error {
	for j, column := range columns {
		if !isColumnReference(column.Column) {
			return fmt.Errorf("validation failed: %s.columns[%d].column %q is not a column letter or index", prefix, j, column.Column)
		}
		if column.Type != "" && !isSupportedType(column.Type) {
			return fmt.Errorf(
				"validation failed: %s.columns[%d].type %q is not supported (valid: %s)",
				prefix,
				j,
				column.Type,
				strings.Join(SupportedTypes, ", "),
			)
		}
		for _, pattern := range column.ValidationPatterns {
			if _, err := regexp.Compile("(?i)" + pattern); err != nil {
				return fmt.Errorf("validation failed: %s.columns[%d].validation_patterns %q: %w", prefix, j, pattern, err)
			}
		}
	}
	return nil
}

func isColumnReference(ref string) bool {
	if ref == "" {
		return false
	}
	if index, err := strconv.Atoi(ref); err == nil {
		return index >= 0
	}
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isSupportedType(name string) bool {
	for _, supported := range SupportedTypes {
		if supported == name {
			return true
		}
	}
	return false
}
