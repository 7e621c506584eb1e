// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for authkeys.
//
// Usage:
//
//	go run . [command] [flags]
//	./authkeys list -f ~/.ssh/authorized_keys
//
// See --help for the available commands.
package main

import (
	"os"

	"github.com/toeirei/authkeys/internal/logging"
	"github.com/toeirei/authkeys/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.L.Error(err.Error())
		os.Exit(1)
	}
}
