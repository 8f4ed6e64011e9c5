// Package main is the entry point for genesisctl, the CLI for the
// genesis multimodal gateway.
package main

import (
	"os"

	"github.com/amine-mosbah/genesis-multimodal-ai/cmd/genesisctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
