// Package main is the entry point for the scout CLI tool, which builds
// per-position percentile profiles from FBRef season tables and finds
// statistically similar players.
package main

import "github.com/pable/go-fbref-scout/cmd"

func main() {
	cmd.Execute()
}
