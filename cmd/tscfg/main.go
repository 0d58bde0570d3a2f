// Package main implements the tscfg CLI.
// It builds control flow graphs for TypeScript sources and prints them as
// text, JSON, or Graphviz DOT.
package main

import (
	"os"

	"github.com/l3aro/tscfg/cmd/tscfg/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
