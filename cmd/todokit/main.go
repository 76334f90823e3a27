// Command todokit is a terminal client for a json-server style todo and
// user store.
//
// Usage:
//
//	todokit [--config FILE] [--base-url URL] [--log-level LEVEL] <command> [args]
//
// Session and notification state live in the store selected by the
// configuration (a JSON file under ~/.todokit by default), so a login
// carries over between invocations.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
