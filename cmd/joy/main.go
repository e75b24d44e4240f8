// Command joy is the interactive front end for the language: a REPL
// by default, or a file runner and word-lister via subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/psil-lang/joy/cmd/joy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
