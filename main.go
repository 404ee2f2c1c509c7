package main

import (
	"os"

	"github.com/tada/mqtt-codec/cli"
)

func main() {
	os.Exit(cli.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
