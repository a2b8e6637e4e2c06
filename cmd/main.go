package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"millionaire-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
