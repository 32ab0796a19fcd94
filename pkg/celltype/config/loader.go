package config

import (
	"fmt"
	"log/slog"

	"github.com/cognicore/celltype/pkg/celltype/geo"
	"github.com/cognicore/celltype/pkg/celltype/infer"
	"github.com/cognicore/celltype/pkg/celltype/query"
	"github.com/cognicore/celltype/pkg/celltype/types"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	// ConfigPath is optional; the defaults apply without it.
	ConfigPath string
	Logger     *slog.Logger
}

// Components holds everything a conversion or query rewrite needs. All of
// it is read-only after construction and may be shared.
type Components struct {
	Config *Config
	// Places is nil when no gazetteer is configured.
	Places    *geo.Lazy
	Catalogue *types.Catalogue
	Inferrer  *infer.Inferrer
	Converter *infer.Converter
	Rewriter  *query.Rewriter
}

// Registry loads the gazetteer if that has not happened yet. It returns
// nil without error when none is configured.
func (c *Components) Registry() (*geo.Registry, error) {
	if c.Places == nil {
		return nil, nil
	}
	return c.Places.Get()
}

// Load reads the configuration and returns initialized components. The
// gazetteer itself is read on first use.
func (l *Loader) Load() (*Components, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := Default()
	if l.ConfigPath != "" {
		var err error
		if cfg, err = Load(l.ConfigPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	return Build(cfg, logger)
}

// Build constructs components from an already validated configuration.
func Build(cfg *Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	comp := &Components{Config: cfg}

	var gaz types.Gazetteer
	if cfg.GeoNames.Enabled() {
		comp.Places = geo.NewLazy(registryLoader(cfg, logger))
		gaz = comp.Places
	}

	cat, err := types.NewCatalogue(gaz)
	if err != nil {
		return nil, fmt.Errorf("build catalogue: %w", err)
	}
	comp.Catalogue = cat
	comp.Inferrer = infer.New(cat, infer.Options{CacheSize: cfg.Inference.CacheSize})
	comp.Converter = infer.NewConverter(comp.Inferrer, cat, infer.ConverterOptions{
		SampleRows: cfg.Table.SampleRows,
		KeepRaw:    cfg.Table.KeepRaw,
		Delimiters: cfg.Table.Delimiters,
		Logger:     logger,
	})
	comp.Rewriter = query.NewRewriter(comp.Inferrer, cat)
	return comp, nil
}

func registryLoader(cfg *Config, logger *slog.Logger) func() (*geo.Registry, error) {
	return func() (*geo.Registry, error) {
		g := cfg.GeoNames
		reg, err := geo.LoadFiles(cfg.Country.Name, cfg.Country.Code, geo.Paths{
			Admin1:   g.Admin1,
			Admin2:   g.Admin2,
			Features: g.Features,
		}, geo.Options{Denylist: g.AliasDenylist})
		if err != nil {
			logger.Error("gazetteer load failed", "country", cfg.Country.Code, "err", err)
			return nil, fmt.Errorf("load gazetteer: %w", err)
		}
		st := reg.Stats()
		logger.Info("gazetteer loaded",
			"country", cfg.Country.Code,
			"admin1", st.Admin1,
			"admin2", st.Admin2,
			"places", st.Places,
			"aliases", st.Aliases)
		return reg, nil
	}
}
