package main

import (
	"fmt"
	"os"

	appconfig "github.com/rcm-tools/revenue-atlas/pkg/config"
	"github.com/rcm-tools/revenue-atlas/pkg/terminal"
)

func main() {
	cfg, err := appconfig.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		DBPath: cfg.Storage.DbPath,
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
