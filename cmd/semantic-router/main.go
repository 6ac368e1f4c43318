// Package main is the entry point for the semantic-router CLI.
//
// Usage:
//
//	semantic-router [flags] <command> [args]
//
// Commands:
//
//	split      - Split a conversation transcript into topics
//	index      - Inspect or clear a vector index
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/dwmorris11/semantic-router/cmd/semantic-router/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
