package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ppiankov/keepsake/internal/cli"
)

func main() {
	// Optional .env so KEEPSAKE_* variables can live next to the project.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
