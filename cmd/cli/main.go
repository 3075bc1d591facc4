package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/mediabox/internal/client/cli"
	"github.com/dmitrijs2005/mediabox/internal/client/config"
)

func main() {
	cfg := config.LoadConfig(os.Args[1:])
	app := cli.NewCLI(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
}
