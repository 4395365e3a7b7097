package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	ActingPlayer string
	Output       string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("PICKUPCTL_SERVER", "http://localhost:3000"),
		ActingPlayer: os.Getenv("PICKUPCTL_AS"),
		Output:       "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
