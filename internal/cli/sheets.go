package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
	"github.com/cognicore/celltype/pkg/celltype/store"
	"github.com/cognicore/celltype/pkg/celltype/store/sqlite"
)

// NewSheetsCommand creates the command that inspects stored sheets.
func NewSheetsCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sheets [id]",
		Short: "List stored sheets, or print one",
		Long: `Without an id, lists the sheets stored by --db, newest first.
With an id, writes that sheet in the selected --format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DB == "" {
				return NewExitError(ExitCommandError, "sheets needs --db")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			st, err := sqlite.OpenSQLite(ctx, opts.DB)
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}
			defer st.Close()

			if len(args) == 1 {
				return showSheet(ctx, cmd, opts, st, args[0])
			}
			return listSheets(ctx, cmd, st, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum sheets to list")
	return cmd
}

func showSheet(ctx context.Context, cmd *cobra.Command, opts *RootOptions, st store.Store, id string) error {
	write, err := opts.writer()
	if err != nil {
		return err
	}
	sheet, err := st.GetSheet(ctx, id)
	if errors.Is(err, internalerr.ErrNotFound) {
		return WrapExitError(ExitFailure, fmt.Sprintf("sheet %s", id), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "read sheet", err)
	}
	return write(cmd.OutOrStdout(), sheet)
}

func listSheets(ctx context.Context, cmd *cobra.Command, st store.Store, limit int) error {
	list, err := st.ListSheets(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "list sheets", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tCOLUMNS\tROWS\tCREATED\tTITLE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			s.ID, s.Source, s.Columns, s.Rows, s.CreatedAt.UTC().Format(time.RFC3339), s.Title)
	}
	return tw.Flush()
}
