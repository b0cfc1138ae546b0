// Package main is the entry point for the globusctl CLI.
//
// globusctl manages Globus platform resources declaratively: a
// globus.yaml file describes the auth projects, OAuth clients, transfer
// endpoints, collections, groups, flows, timers, compute endpoints,
// search indexes and Globus Connect Server resources that should exist,
// and `globusctl apply` reconciles the platform against it.
//
// Commands: init, apply, destroy, whoami, token, version.
//
// For detailed usage information, run:
//
//	globusctl --help
package main

import (
	"fmt"
	"os"

	"github.com/m1yag1/globusctl/cmd/globusctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
