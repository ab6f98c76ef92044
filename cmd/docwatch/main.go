// Command docwatch watches a document in a GitHub repository.
package main

import (
	"os"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/cli"
	"github.com/custodia-labs/docwatch/internal/app"
)

// version is overridden with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(app.Bootstrap)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
