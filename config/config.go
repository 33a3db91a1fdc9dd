// Package config loads runtime configuration from the environment.
// A .env file is honored when present; missing optional values fall
// back to defaults so local development works out of the box.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	DBPath string

	// Canonical public URL used to build job permalinks in social posts.
	SiteURL string

	// Outbound HTTP behavior shared by every syndication adapter.
	HTTPTimeout time.Duration

	// Word limit applied to job descriptions before social posting.
	SocialWordLimit int

	// Partner job-board endpoints. An empty URL disables that channel.
	PartnerURLs map[string]string

	// Government vacancy registry.
	GovernmentURL    string
	GovernmentAPIKey string

	// Social/professional network endpoints (overridable for tests).
	FacebookGraphURL string
	LinkedInAPIURL   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		DBPath:          getEnv("DB_PATH", "jobpilot.db"),
		SiteURL:         getEnv("SITE_URL", "http://localhost:3000"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 30*time.Second),
		SocialWordLimit: getInt("SOCIAL_WORD_LIMIT", 40),
		PartnerURLs: map[string]string{
			"seekmate":  os.Getenv("PARTNER_SEEKMATE_URL"),
			"jobnest":   os.Getenv("PARTNER_JOBNEST_URL"),
			"careerhub": os.Getenv("PARTNER_CAREERHUB_URL"),
			"worklocal": os.Getenv("PARTNER_WORKLOCAL_URL"),
		},
		GovernmentURL:    os.Getenv("WORKFORCE_API_URL"),
		GovernmentAPIKey: os.Getenv("WORKFORCE_API_KEY"),
		FacebookGraphURL: getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v18.0"),
		LinkedInAPIURL:   getEnv("LINKEDIN_API_URL", "https://api.linkedin.com/v2"),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
