package main

import (
	"fmt"
	"os"

	"github.com/slicekit/profilectl/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
