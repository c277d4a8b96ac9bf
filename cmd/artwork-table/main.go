// Command artwork-table serves a paginated, selectable table of artworks
// from the Art Institute of Chicago listing API.
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// shutdownSignals cancel the command context, which drains the HTTP server
// within the configured shutdown timeout.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(shutdownSignals...),
	); err != nil {
		os.Exit(1)
	}
}
