package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env when present; in deployed environments the variables
// come from the process environment instead.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
}
