package main

import (
	"os"

	"github.com/sergeyhtml/sergey/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
