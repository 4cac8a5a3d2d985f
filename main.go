package main

import (
	"log"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"eventhive/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
