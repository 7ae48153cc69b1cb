package main

import (
	"os"

	"github.com/conneroisu/prosemark/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
