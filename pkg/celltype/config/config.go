package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/celltype/pkg/celltype/infer"
	"github.com/cognicore/celltype/pkg/celltype/internalerr"
	"github.com/cognicore/celltype/pkg/celltype/tabular"
	"github.com/cognicore/celltype/pkg/celltype/types"
)

// Config is the YAML configuration file.
type Config struct {
	Country   Country   `yaml:"country"`
	GeoNames  GeoNames  `yaml:"geonames"`
	Table     Table     `yaml:"table"`
	Inference Inference `yaml:"inference"`
}

// Country names the country places are resolved in.
type Country struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// GeoNames locates the gazetteer exports. Leaving all three paths empty
// disables place recognition.
type GeoNames struct {
	Admin1        string   `yaml:"admin1"`
	Admin2        string   `yaml:"admin2"`
	Features      string   `yaml:"features"`
	AliasDenylist []string `yaml:"alias_denylist"`
}

// Enabled reports whether any gazetteer path is set.
func (g GeoNames) Enabled() bool {
	return g.Admin1 != "" || g.Admin2 != "" || g.Features != ""
}

// Table tunes table conversion.
type Table struct {
	SampleRows int      `yaml:"sample_rows"`
	KeepRaw    []string `yaml:"keep_raw"`
	Delimiters string   `yaml:"delimiters"`
}

// Inference tunes the value memo.
type Inference struct {
	CacheSize int `yaml:"cache_size"`
}

// Default returns the built-in configuration: Australia, no gazetteer.
func Default() *Config {
	return &Config{
		Country: Country{Name: "Australia", Code: "AU"},
		GeoNames: GeoNames{
			AliasDenylist: []string{"price"},
		},
		Table: Table{
			SampleRows: infer.DefaultSampleRows,
			KeepRaw:    append([]string(nil), infer.DefaultKeepRaw...),
			Delimiters: tabular.DefaultDelimiters,
		},
		Inference: Inference{CacheSize: infer.DefaultCacheSize},
	}
}

// Load reads a YAML file over the defaults. Relative gazetteer paths are
// taken relative to the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.GeoNames.Admin1, &cfg.GeoNames.Admin2, &cfg.GeoNames.Features} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the converter cannot use.
func (c *Config) Validate() error {
	g := c.GeoNames
	if g.Enabled() {
		if g.Admin1 == "" || g.Admin2 == "" || g.Features == "" {
			return invalid("geonames: admin1, admin2 and features must be set together")
		}
		if c.Country.Name == "" || c.Country.Code == "" {
			return invalid("country: name and code are required with a gazetteer")
		}
	}

	if c.Table.SampleRows < 1 {
		return invalid("table.sample_rows must be positive, got %d", c.Table.SampleRows)
	}
	if c.Table.Delimiters == "" {
		return invalid("table.delimiters must not be empty")
	}
	for _, r := range c.Table.Delimiters {
		if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return invalid("table.delimiters: %q cannot separate fields", r)
		}
	}

	extents, err := knownExtents()
	if err != nil {
		return err
	}
	for _, e := range c.Table.KeepRaw {
		if _, ok := extents[e]; !ok {
			return invalid("table.keep_raw: unknown extent %q", e)
		}
	}
	return nil
}

func knownExtents() (map[string]struct{}, error) {
	cat, err := types.NewCatalogue(nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for _, k := range cat.Kinds() {
		out[cat.Extent(k)] = struct{}{}
	}
	return out, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), internalerr.ErrInvalidConfig)
}
