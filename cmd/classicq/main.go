// Command classicq translates Classic keyword queries to Lucene syntax.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/classicq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "classicq:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
