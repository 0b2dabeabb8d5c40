package main

import (
	"os"

	"github.com/namgaylhamo24/quick-post-02240350/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
