// Command arnav drives the AR marker placement engine: scripted sessions, image
// uploads to the recognition service and a debug HTTP API.
package main

import (
	"fmt"
	"os"
)

// build info, set via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
