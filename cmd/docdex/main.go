// Command docdex is the entry point for the documentation indexer and
// context-assembly engine.
package main

import (
	"fmt"
	"os"

	"github.com/basalt-docs/docdex/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
