package main

import (
	"os"

	"github.com/totegamma/rentchain/cmd/rentchain/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
