package main

import (
	"os"

	"autonym/cmd/autonym/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
