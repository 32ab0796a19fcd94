// Package cli implements the celltype command line.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/celltype/internal/logging"
	"github.com/cognicore/celltype/pkg/celltype/config"
	"github.com/cognicore/celltype/pkg/celltype/doc"
)

// RootOptions holds global flags for all commands, resolved from flags,
// CELLTYPE_* environment variables and defaults in that order.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Format     string // "xml" | "json"
	DB         string
	Jobs       int

	logger *slog.Logger
}

// ValidFormats defines the allowed document formats.
var ValidFormats = []string{"xml", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()
	var queryMode, tableMode bool

	cmd := &cobra.Command{
		Use:   "celltype [files...]",
		Short: "Type inference for indexing and querying tables",
		Long: `celltype infers the type of every column in a CSV table and rewrites
the table into an annotated document for a search engine indexer.

With no mode flag each file argument becomes one document on stdout.
  -t  reads table file names from stdin, one per line
  -q  rewrites search queries from stdin into typed query fragments`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case queryMode:
				return runQuery(cmd, opts)
			case tableMode:
				names, err := readNames(cmd.InOrStdin())
				if err != nil {
					return WrapExitError(ExitCommandError, "read table names", err)
				}
				return runConvert(cmd, opts, names)
			case len(args) > 0:
				return runConvert(cmd, opts, args)
			default:
				return cmd.Help()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML config file (defaults apply without one)")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")
	flags.StringVar(&opts.Format, "format", "xml", "document format (xml|json)")
	flags.StringVar(&opts.DB, "db", "", "SQLite database to store converted sheets in")
	flags.IntVar(&opts.Jobs, "jobs", runtime.NumCPU(), "files converted concurrently")

	cmd.Flags().BoolVarP(&queryMode, "query", "q", false, "rewrite queries read from stdin")
	cmd.Flags().BoolVarP(&tableMode, "table", "t", false, "convert tables named on stdin")
	cmd.MarkFlagsMutuallyExclusive("query", "table")

	v.SetEnvPrefix("CELLTYPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	cmd.AddCommand(NewSheetsCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// resolve copies bound values out of viper, validates them and installs
// the logger.
func (o *RootOptions) resolve(cmd *cobra.Command, v *viper.Viper) error {
	o.ConfigPath = v.GetString("config")
	o.LogLevel = v.GetString("log-level")
	o.LogFormat = v.GetString("log-format")
	o.Format = strings.ToLower(v.GetString("format"))
	o.DB = v.GetString("db")
	o.Jobs = v.GetInt("jobs")

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if !logging.ValidFormat(o.LogFormat) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid log format %q", o.LogFormat))
	}

	o.logger = logging.Setup(cmd.ErrOrStderr(), o.LogLevel, o.LogFormat)
	return nil
}

// components loads the configuration and, when a gazetteer is
// configured, loads it so a bad path fails before any input is read.
func (o *RootOptions) components() (*config.Components, error) {
	loader := config.Loader{ConfigPath: o.ConfigPath, Logger: o.logger}
	comp, err := loader.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if _, err := comp.Registry(); err != nil {
		return nil, WrapExitError(ExitCommandError, "load gazetteer", err)
	}
	return comp, nil
}

func (o *RootOptions) writer() (doc.Writer, error) {
	w, err := doc.WriterFor(o.Format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "output format", err)
	}
	return w, nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// readNames returns the non-blank lines of r.
func readNames(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names, sc.Err()
}
