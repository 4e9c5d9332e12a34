// Package main is the entry point for the counterpal CLI.
//
// Usage:
//
//	counterpal [flags] <command> [args]
//
// Commands:
//
//	serve      - Run the live counter assistant with the dashboard
//	count      - Count items on a tray photo
//	history    - List and export archived sessions
//	export     - Export reports to a directory or S3
//	config     - Configuration management (contexts)
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/counterpal/counterpal/cmd/counterpal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
