// Package main is the entry point for the dayplan CLI.
package main

import "github.com/dayplan/dayplan-cli/internal/cli"

func main() {
	cli.Execute()
}
