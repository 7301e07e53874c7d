package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"supplynorm/config"
)

func TestResolveConfigEditPath(t *testing.T) {
	t.Run("uses explicit flag first", func(t *testing.T) {
		got, err := resolveConfigEditPath("./custom.yaml", "/tmp/active.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "./custom.yaml" {
			t.Fatalf("expected explicit config path, got %q", got)
		}
	})

	t.Run("uses active config when flag is empty", func(t *testing.T) {
		got, err := resolveConfigEditPath("", "/tmp/active.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/tmp/active.yaml" {
			t.Fatalf("expected active config path, got %q", got)
		}
	})

	t.Run("falls back to home config path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		got, err := resolveConfigEditPath("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(home, ".supplynorm.yaml")
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}

func TestEnsureConfigFileWithTemplate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "myconfig.yaml")

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error creating template config: %v", err)
	}
	if !created {
		t.Fatalf("expected file to be created")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error reading config file: %v", err)
	}
	if !strings.Contains(string(content), "# supplynorm configuration") {
		t.Fatalf("expected example config content, got:\n%s", string(content))
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("unexpected error stat config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected config file mode 0600, got %o", info.Mode().Perm())
	}

	created, err = ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error on existing config file: %v", err)
	}
	if created {
		t.Fatalf("did not expect existing file to be recreated")
	}
}

func TestResolveEditorValue(t *testing.T) {
	tests := []struct {
		name   string
		visual string
		editor string
		want   string
	}{
		{name: "visual wins", visual: "code --wait", editor: "nano", want: "code --wait"},
		{name: "editor fallback", visual: "", editor: "nano", want: "nano"},
		{name: "default vi", visual: "", editor: "", want: "vi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveEditorValue(tt.visual, tt.editor)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildEditorCommand(t *testing.T) {
	t.Run("splits editor args and appends config path", func(t *testing.T) {
		cmd, err := buildEditorCommand("code --wait", "/tmp/cfg.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Path != "code" {
			t.Fatalf("expected command path %q, got %q", "code", cmd.Path)
		}
		if len(cmd.Args) != 3 {
			t.Fatalf("expected 3 args, got %d", len(cmd.Args))
		}
		if cmd.Args[1] != "--wait" || cmd.Args[2] != "/tmp/cfg.yaml" {
			t.Fatalf("unexpected command args: %#v", cmd.Args)
		}
	})

	t.Run("fails on empty editor", func(t *testing.T) {
		if _, err := buildEditorCommand("   ", "/tmp/cfg.yaml"); err == nil {
			t.Fatalf("expected error for empty editor")
		}
	})
}

func TestActiveConfigPath(t *testing.T) {
	if got := activeConfigPath(" ./flag.yaml ", "/tmp/used.yaml"); got != "./flag.yaml" {
		t.Fatalf("expected flag path, got %q", got)
	}
	if got := activeConfigPath("", "/tmp/used.yaml"); got != "/tmp/used.yaml" {
		t.Fatalf("expected used path, got %q", got)
	}
	if got := activeConfigPath("", ""); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
}

func TestDescribeSuppliers(t *testing.T) {
	t.Run("lists rule counts per supplier", func(t *testing.T) {
		suppliers := []config.Supplier{
			{
				Name:         "Acme",
				FileTemplate: "acme_*.csv",
				DataStartRow: 1,
				Columns: []config.ColumnRule{
					{Column: "A", Target: "name", Required: true},
					{Column: "B", Target: "price", Classification: "Offer"},
					{Column: "C", Target: "quantity", Classification: config.ClassificationOffer},
				},
			},
			{Name: "Beta"},
		}

		var out bytes.Buffer
		describeSuppliers(&out, suppliers)

		want := "Suppliers: 2\n" +
			"  - Acme: template acme_*.csv, data from row 1, 3 columns (1 required, 2 offer)\n" +
			"  - Beta: template (none), data from row 0, 0 columns (0 required, 0 offer)\n"
		if out.String() != want {
			t.Fatalf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("hints when no supplier is configured", func(t *testing.T) {
		var out bytes.Buffer
		describeSuppliers(&out, nil)
		if !strings.Contains(out.String(), "config supplier add") {
			t.Fatalf("expected supplier add hint, got %q", out.String())
		}
	})
}
