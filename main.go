package main

import (
	"os"

	"github.com/bellflight/avr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
