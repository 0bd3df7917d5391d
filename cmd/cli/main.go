package main

import (
	"os"

	"github.com/gros-dev/gros/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
