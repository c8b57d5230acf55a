// vodkeepd is the video processing daemon. It owns the job store and
// pipeline execution and serves the local HTTP API the vodkeep CLI
// talks to.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/vodkeep/config.toml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if err := run(*configPath, *showVersion); err != nil {
		fmt.Fprintln(os.Stderr, "vodkeepd:", err)
		os.Exit(1)
	}
}
