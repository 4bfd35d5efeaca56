package main

import (
	"os"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
