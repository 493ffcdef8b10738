// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Keywarden.
//
// Usage:
//
//	go run . [flags]
//	./keywarden [flags]
//
// This launches the Keywarden CLI. See --help for options.
package main

import (
	"os"

	"github.com/keywarden/keywarden/internal/cli"
)

// version is set at build time using -ldflags, e.g.:
// go build -ldflags "-X main.version=1.2.3"
var version = "dev"

// main is the entrypoint for the Keywarden CLI.
func main() {
	if err := cli.Execute(version); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}
