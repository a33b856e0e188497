// Package main is the entry point for the sqldoc CLI.
package main

import (
	"os"

	"github.com/sqldoc-labs/sqldoc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
