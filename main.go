// Package main is the entry point for acme-disk-use.
package main

import (
	"fmt"
	"os"

	"github.com/blackwhitehere/acme-disk-use/internal/cli"
	"github.com/blackwhitehere/acme-disk-use/internal/log"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	log.InitLogger()

	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
