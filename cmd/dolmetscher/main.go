package main

import (
	"os"

	"github.com/msto63/dolmetscher/cmd/dolmetscher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
