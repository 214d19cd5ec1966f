// Command weave runs the integration broker and knowledge assistant.
package main

import (
	"os"

	"github.com/custodia-labs/weave/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
