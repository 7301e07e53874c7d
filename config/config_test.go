package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateYAMLContent_RejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	content := []byte(`database:
  path: "./test.db"
suppliers:
  - name: "acme"
    file_template: "acme_*.xlsx"
    columns:
      - column: "A"
        target: "name"
        type: "money"
`)

	_, err := ValidateYAMLContent(content)
	if err == nil {
		t.Fatalf("expected validation error for unsupported type")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_NormalizesColumnReferences(t *testing.T) {
	t.Parallel()

	content := []byte(`suppliers:
  - name: "acme"
    data_start_row: 1
    columns:
      - column: " b "
        target: "price"
        type: "Decimal"
        classification: "offer"
`)

	cfg, err := ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	column := cfg.Suppliers[0].Columns[0]
	if column.Column != "B" {
		t.Fatalf("expected column reference B, got %q", column.Column)
	}
	if column.Type != "decimal" {
		t.Fatalf("expected lower-cased type, got %q", column.Type)
	}
	if cfg.Database.Path != "./supplynorm.db" {
		t.Fatalf("expected default database path, got %q", cfg.Database.Path)
	}
}

func TestValidateYAMLContent_RejectsDuplicateSupplier(t *testing.T) {
	t.Parallel()

	content := []byte(`suppliers:
  - name: "acme"
    columns: []
  - name: "ACME"
    columns: []
`)

	_, err := ValidateYAMLContent(content)
	if err == nil || !strings.Contains(err.Error(), "duplicate supplier") {
		t.Fatalf("expected duplicate supplier error, got %v", err)
	}
}

func TestValidateYAMLContent_RejectsBadPattern(t *testing.T) {
	t.Parallel()

	content := []byte(`suppliers:
  - name: "acme"
    columns:
      - column: "A"
        target: "ean"
        validation_patterns: ["([0-9"]
`)

	if _, err := ValidateYAMLContent(content); err == nil {
		t.Fatalf("expected error for invalid validation pattern")
	}
}

func TestValidateYAMLContent_RejectsBadColumnReference(t *testing.T) {
	t.Parallel()

	content := []byte(`suppliers:
  - name: "acme"
    columns:
      - column: "A1"
        target: "name"
`)

	if _, err := ValidateYAMLContent(content); err == nil {
		t.Fatalf("expected error for invalid column reference")
	}
}

func TestValidateYAMLContent_ExampleTemplateIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("example template should validate: %v", err)
	}
	if _, ok := cfg.FindSupplier("EXAMPLE"); !ok {
		t.Fatalf("expected example supplier to be found case-insensitively")
	}
}

func TestLoadSupplierFile_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "perfumery.json")
	content := `{
  "name": "Perfumery",
  "data_start_row": 2,
  "columns": [
    {"column": "a", "target": "Name", "required": true, "skip_row_on_failure": true},
    {"column": "3", "target": "Price", "type": "decimal", "classification": "offer"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write supplier file: %v", err)
	}

	supplier, err := LoadSupplierFile(path)
	if err != nil {
		t.Fatalf("load supplier file: %v", err)
	}
	if supplier.Name != "Perfumery" || supplier.DataStartRow != 2 {
		t.Fatalf("unexpected supplier: %+v", supplier)
	}
	if len(supplier.Columns) != 2 || supplier.Columns[0].Column != "A" || !supplier.Columns[0].SkipRowOnFailure {
		t.Fatalf("unexpected columns: %+v", supplier.Columns)
	}
}

func TestLoadSupplierFile_NameFallsBackToFileName(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "acme.yaml")
	if err := os.WriteFile(path, []byte("columns:\n  - column: A\n    target: name\n"), 0o644); err != nil {
		t.Fatalf("write supplier file: %v", err)
	}

	supplier, err := LoadSupplierFile(path)
	if err != nil {
		t.Fatalf("load supplier file: %v", err)
	}
	if supplier.Name != "acme" {
		t.Fatalf("expected name from file, got %q", supplier.Name)
	}
}

func TestMatchSupplierByTemplate(t *testing.T) {
	t.Parallel()

	suppliers := []Supplier{
		{Name: "a", FileTemplate: "acme_*.xlsx"},
		{Name: "b", FileTemplate: "*.csv"},
	}

	supplier, ok := MatchSupplierByTemplate("/tmp/acme_2026.xlsx", suppliers)
	if !ok || supplier.Name != "a" {
		t.Fatalf("expected supplier a, got %+v (ok=%t)", supplier, ok)
	}
	if _, ok := MatchSupplierByTemplate("/tmp/other.xlsx", suppliers); ok {
		t.Fatalf("expected no match for other.xlsx")
	}
}
