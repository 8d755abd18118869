package main

import (
	"os"

	"lingoflow/cmd/lingoctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
