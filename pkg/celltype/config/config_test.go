package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.GeoNames.Enabled() {
		t.Error("Default config should not enable the gazetteer")
	}
	if cfg.Table.SampleRows != 21 {
		t.Errorf("Expected 21 sample rows, got %d", cfg.Table.SampleRows)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "celltype.yaml", `
country:
  name: New Zealand
  code: NZ
geonames:
  admin1: geo/admin1CodesASCII.txt
  admin2: /data/admin2Codes.txt
  features: geo/NZ.txt
table:
  sample_rows: 50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Country.Code != "NZ" {
		t.Errorf("Country code = %q", cfg.Country.Code)
	}
	if cfg.Table.SampleRows != 50 {
		t.Errorf("SampleRows = %d", cfg.Table.SampleRows)
	}
	if cfg.Table.Delimiters != ",;" {
		t.Errorf("Delimiters should keep the default, got %q", cfg.Table.Delimiters)
	}
	if len(cfg.Table.KeepRaw) != 5 {
		t.Errorf("KeepRaw should keep the default, got %v", cfg.Table.KeepRaw)
	}
	if want := filepath.Join(dir, "geo", "admin1CodesASCII.txt"); cfg.GeoNames.Admin1 != want {
		t.Errorf("Admin1 = %q, want %q", cfg.GeoNames.Admin1, want)
	}
	if cfg.GeoNames.Admin2 != "/data/admin2Codes.txt" {
		t.Errorf("Absolute paths should be kept, got %q", cfg.GeoNames.Admin2)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Should error on missing file")
	}

	bad := writeFile(t, dir, "bad.yaml", "table: [not, a, map]\n")
	if _, err := Load(bad); err == nil {
		t.Error("Should error on malformed YAML")
	}

	invalidRows := writeFile(t, dir, "rows.yaml", "table:\n  sample_rows: 0\n")
	if _, err := Load(invalidRows); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"partial gazetteer", func(c *Config) { c.GeoNames.Admin1 = "a1.txt" }},
		{"gazetteer without country", func(c *Config) {
			c.GeoNames = GeoNames{Admin1: "a", Admin2: "b", Features: "c"}
			c.Country.Code = ""
		}},
		{"negative sample", func(c *Config) { c.Table.SampleRows = -3 }},
		{"no delimiters", func(c *Config) { c.Table.Delimiters = "" }},
		{"quote delimiter", func(c *Config) { c.Table.Delimiters = `,"` }},
		{"unknown extent", func(c *Config) { c.Table.KeepRaw = []string{"number", "colour"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
