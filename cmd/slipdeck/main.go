// Command slipdeck populates proposal decks from placement slips and
// runs paced email campaigns.
package main

import (
	"os"

	"github.com/custodia-labs/slipdeck/internal/adapters/driving/cli"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
