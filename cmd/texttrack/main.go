package main

import (
	"os"

	"github.com/henry234/texttrack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
