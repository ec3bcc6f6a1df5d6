// Command worldstats runs country dataset reconciliation from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/JonMunkholm/worldstats/internal/core/sources" // Register built-in sources
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		stop()
		os.Exit(1)
	}
}
