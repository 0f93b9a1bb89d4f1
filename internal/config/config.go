package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/KOFI-GYIMAH/github-client/pkg/logger"
	"github.com/joho/godotenv"
)

const (
	defaultAPIURL          = "https://api.github.com"
	defaultServerPort      = ":8081"
	defaultCreateRepoQueue = "github_repo_create"
)

type Config struct {
	GitHubAPIURL     string
	GitHubToken      string
	GitHubAPIVersion string
	HTTPTimeout      time.Duration
	ServerPort       string
	RabbitMQURL      string
	CreateRepoQueue  string
	Debug            bool
}

// * LoadConfiguration reads the .env file (if any) and the environment and
// * returns a pointer to a Config. Only malformed values are errors; every
// * setting has a usable default.
func LoadConfiguration() (*Config, error) {
	_ = godotenv.Load(".env")
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		GitHubAPIURL:     getenv("GITHUB_API_URL"),
		GitHubToken:      getenv("GITHUB_TOKEN"),
		GitHubAPIVersion: getenv("GITHUB_API_VERSION"),
		ServerPort:       getenv("SERVER_PORT"),
		RabbitMQURL:      getenv("RABBITMQ_URL"),
		CreateRepoQueue:  getenv("CREATE_REPO_QUEUE"),
		Debug:            getenv("DEBUG") == "true",
	}

	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = defaultAPIURL
	}
	u, err := url.Parse(cfg.GitHubAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("GITHUB_API_URL must be an absolute URL, got %q", cfg.GitHubAPIURL)
	}

	if raw := getenv("HTTP_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		if timeout < 0 {
			return nil, fmt.Errorf("HTTP_TIMEOUT must not be negative, got %s", timeout)
		}
		cfg.HTTPTimeout = timeout
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
	}

	if cfg.CreateRepoQueue == "" {
		cfg.CreateRepoQueue = defaultCreateRepoQueue
	}

	logger.Debug("env content loaded (api=%s, token set=%t)", cfg.GitHubAPIURL, cfg.GitHubToken != "")
	return cfg, nil
}

// * Headers returns the static request headers the GitHub client should send.
// * Nothing is sent unless explicitly configured.
func (c *Config) Headers() map[string]string {
	headers := make(map[string]string)
	if c.GitHubAPIVersion != "" {
		headers["X-GitHub-Api-Version"] = c.GitHubAPIVersion
		headers["Accept"] = "application/vnd.github+json"
	}
	return headers
}
