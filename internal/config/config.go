package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the client configuration, read from the environment with an
// optional .env file.
type Config struct {
	API   APIConfig
	Debug bool
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	timeoutSecs, _ := strconv.Atoi(getEnv("STOREFLOW_API_TIMEOUT", "10"))
	if timeoutSecs <= 0 {
		timeoutSecs = 10
	}

	return &Config{
		API: APIConfig{
			BaseURL: getEnv("STOREFLOW_API_URL", "https://store-flow-api.vercel.app"),
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		Debug: os.Getenv("STOREFLOW_DEBUG") != "",
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
