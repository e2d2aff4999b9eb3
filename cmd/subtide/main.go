package main

import (
	"os"

	"github.com/subtide/subtide/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
