// Command quest generates and refines quiz questions with AI.
package main

import (
	"os"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
