// vodkeep is the command-line client for the vodkeepd daemon.
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
