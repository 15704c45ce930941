// Package main is the entry point for reel.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmcdole/reel/cmd/reel/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
