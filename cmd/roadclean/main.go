// Package main is the entry point for the roadclean CLI.
package main

import (
	"os"

	"github.com/jmylchreest/roadclean/cmd/roadclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
