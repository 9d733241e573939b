package main

import (
	"os"

	"github.com/textcipher-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
