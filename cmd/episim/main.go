// Command episim runs agent-based epidemic simulations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/episim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "episim: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
