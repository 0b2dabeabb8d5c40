package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/namgaylhamo24/quick-post-02240350/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteServer(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
