// Package main provides the entry point for the docchat CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"docchat-relay/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
