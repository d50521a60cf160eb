// Package main is the alumnictl operator executable.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/alumnihub/internal/command"
)

func main() { os.Exit(run()) }

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := command.RootCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
