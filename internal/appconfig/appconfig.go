// Package appconfig loads server configuration from the environment, with an
// optional .env file for local development.
package appconfig

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime settings.
type Config struct {
	JenkinsURL      string
	JenkinsUsername string
	JenkinsToken    string
	Timeout         time.Duration
	MaxBuilds       int
	CacheTTL        time.Duration
	LogLevel        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		JenkinsURL:      strings.TrimSpace(os.Getenv("JENKINS_URL")),
		JenkinsUsername: strings.TrimSpace(os.Getenv("JENKINS_USERNAME")),
		JenkinsToken:    strings.TrimSpace(os.Getenv("JENKINS_TOKEN")),
		Timeout:         envSeconds("JENKINS_TIMEOUT", 30*time.Second),
		MaxBuilds:       envInt("MAX_BUILDS_PER_PIPELINE", 10),
		CacheTTL:        envSeconds("CACHE_TTL", 300*time.Second),
		LogLevel:        firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
	}

	// JENKINS_MCP_AUTH carries "user:api_token" as a single variable and
	// fills whichever of the split fields are unset.
	if auth := strings.TrimSpace(os.Getenv("JENKINS_MCP_AUTH")); auth != "" {
		if user, token, ok := strings.Cut(auth, ":"); ok {
			if cfg.JenkinsUsername == "" {
				cfg.JenkinsUsername = user
			}
			if cfg.JenkinsToken == "" {
				cfg.JenkinsToken = token
			}
		}
	}

	return cfg
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envSeconds(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
