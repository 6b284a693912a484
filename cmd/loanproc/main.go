package main

import (
	"os"

	"github.com/neurofin/loan-processor/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
