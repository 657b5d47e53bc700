package main

import (
	"os"

	"github.com/abiiranathan/lexicon-sub000/cmd/lexicon/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
