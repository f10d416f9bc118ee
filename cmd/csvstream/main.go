package main

import (
	"os"

	"github.com/oleg578/csvstream/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
