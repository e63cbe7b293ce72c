// ABOUTME: Entry point for the fanzones admin console
// ABOUTME: Interactive terminal UI plus scripting subcommands for the FanZones backend

package main

import (
	"fmt"
	"os"

	"github.com/fanzones/console/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
