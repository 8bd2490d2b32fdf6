package main

import (
	"os"

	"github.com/zinye/prm/backend/cmd/prm/commands"
)

// main is the entry point for the PRM CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
