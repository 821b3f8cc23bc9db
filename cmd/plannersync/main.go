package main

import (
	"os"

	"github.com/amirbrooks/plannersync/cmd/plannersync/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	os.Exit(commands.Execute())
}
