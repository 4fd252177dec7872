package main

import (
	"context"
	"os"
	"os/signal"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		// Give a second interrupt its default behaviour.
		<-ctx.Done()
		stop()
	}()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 2
	}
	return exitCode
}
