package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultJMAPHost = "api.fastmail.com"
	defaultMCPHost  = "localhost"
	defaultMCPPort  = 3000
	defaultLogLevel = "INFO"
)

// Config holds the application configuration
type Config struct {
	AuthToken  string
	BaseURL    string
	SessionURL string
	MCPHost    string
	MCPPort    int
	LogLevel   string
	LogFile    string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	token := firstEnv("FASTMAIL_AUTH_TOKEN", "JMAP_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("FASTMAIL_AUTH_TOKEN or JMAP_API_TOKEN environment variable is required")
	}

	base := firstEnv("FASTMAIL_JMAP_BASE_URL", "JMAP_HOST")
	if base == "" {
		base = defaultJMAPHost
	}
	baseURL := NormalizeBaseURL(base)

	sessionURL := os.Getenv("JMAP_SESSION_URL")
	if sessionURL == "" {
		sessionURL = fmt.Sprintf("https://%s/.well-known/jmap", HostFromURL(baseURL))
	}

	port := defaultMCPPort
	if raw := os.Getenv("MCP_PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 || p > 65535 {
			return nil, fmt.Errorf("MCP_PORT must be a number between 1 and 65535, got %q", raw)
		}
		port = p
	}

	host := os.Getenv("MCP_HOST")
	if host == "" {
		host = defaultMCPHost
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = defaultLogLevel
	}

	return &Config{
		AuthToken:  token,
		BaseURL:    baseURL,
		SessionURL: sessionURL,
		MCPHost:    host,
		MCPPort:    port,
		LogLevel:   strings.ToUpper(level),
		LogFile:    os.Getenv("LOG_FILE"),
	}, nil
}

// Host returns the JMAP server host name.
func (c *Config) Host() string {
	return HostFromURL(c.BaseURL)
}

// Addr returns the listen address for the HTTP transport.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.MCPHost, c.MCPPort)
}

// NormalizeBaseURL turns a bare host into a JMAP API URL and guarantees a trailing slash.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http") {
		return fmt.Sprintf("https://%s/jmap/api/", strings.Trim(raw, "/"))
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw
}

// HostFromURL strips the scheme and path from a URL.
func HostFromURL(raw string) string {
	host := raw
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	return host
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
