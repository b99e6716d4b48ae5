package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	ContentAPIURL string
	PublicURL     string
}

// Load reads an optional .env file and then the environment. A missing
// .env is not an error.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8000")
	c.ContentAPIURL = getenv("CONTENT_API_URL", "http://localhost:5000")
	c.PublicURL = getenv("PUBLIC_URL", "http://localhost:"+c.Port)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
