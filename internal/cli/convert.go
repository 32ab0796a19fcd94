package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/celltype/pkg/celltype/batch"
	"github.com/cognicore/celltype/pkg/celltype/doc"
	"github.com/cognicore/celltype/pkg/celltype/store"
	"github.com/cognicore/celltype/pkg/celltype/store/sqlite"
)

// runConvert converts every file and writes the documents to stdout in
// argument order. A file that fails is logged and skipped.
func runConvert(cmd *cobra.Command, opts *RootOptions, files []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	write, err := opts.writer()
	if err != nil {
		return err
	}
	comp, err := opts.components()
	if err != nil {
		return err
	}

	var sink store.Store
	if opts.DB != "" {
		if sink, err = sqlite.OpenSQLite(ctx, opts.DB); err != nil {
			return WrapExitError(ExitCommandError, "open database", err)
		}
		defer sink.Close()
	}

	results := batch.Run(ctx, files, opts.Jobs, func(_ context.Context, path string) (*doc.Sheet, error) {
		return comp.Converter.ConvertFile(path)
	})

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			opts.logger.Error("convert failed", "file", r.Item, "err", r.Err)
			continue
		}
		if sink != nil {
			id, err := sink.PutSheet(ctx, r.Sheet)
			if err != nil {
				return WrapExitError(ExitCommandError, "store sheet", err)
			}
			opts.logger.Info("sheet stored", "file", r.Item, "id", id)
		}
		if err := write(out, r.Sheet); err != nil {
			return WrapExitError(ExitFailure, "write document", err)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) failed", failed, len(files)))
	}
	return nil
}

func runQuery(cmd *cobra.Command, opts *RootOptions) error {
	comp, err := opts.components()
	if err != nil {
		return err
	}
	if err := comp.Rewriter.Stream(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return WrapExitError(ExitFailure, "rewrite queries", err)
	}
	return nil
}
