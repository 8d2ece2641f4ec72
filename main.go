package main

import (
	"os"

	"github.com/timegrain/timegrain/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
