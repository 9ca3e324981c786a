package main

import (
	"github.com/joho/godotenv"

	"github.com/statscard/statscard/cmd"
)

func main() {
	// A missing .env file is fine; configuration falls back to the process environment.
	_ = godotenv.Load()
	cmd.Execute()
}
