// Command celltype rewrites CSV tables into typed documents for indexing
// and rewrites search queries into typed query fragments.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cognicore/celltype/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "celltype: %v\n", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
