package main

import (
	"os"

	"github.com/thkox/home-ai-server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
