package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Web holds everything the web front end needs to run. The three search
// service settings have no defaults: without them the app cannot reach
// the index and must not start.
type Web struct {
	SearchEndpoint string
	SearchQueryKey string
	SearchIndex    string

	BindAddr string
	PageSize int
}

// LoadWeb builds a Web config from a .env file (when one exists in the
// working directory) and the process environment. The environment wins
// over the file.
func LoadWeb() (*Web, error) {
	_ = godotenv.Load()

	c := &Web{
		SearchEndpoint: strings.TrimSpace(os.Getenv("SEARCH_SERVICE_ENDPOINT")),
		SearchQueryKey: strings.TrimSpace(os.Getenv("SEARCH_SERVICE_QUERY_KEY")),
		SearchIndex:    strings.TrimSpace(os.Getenv("SEARCH_INDEX_NAME")),
		BindAddr:       getEnv("WEB_BIND_ADDR", "0.0.0.0:5051"),
		PageSize:       getInt("SEARCH_PAGE_SIZE", 50),
	}

	if c.SearchEndpoint == "" {
		return nil, fmt.Errorf("SEARCH_SERVICE_ENDPOINT must be set")
	}
	if c.SearchQueryKey == "" {
		return nil, fmt.Errorf("SEARCH_SERVICE_QUERY_KEY must be set")
	}
	if c.SearchIndex == "" {
		return nil, fmt.Errorf("SEARCH_INDEX_NAME must be set")
	}

	if c.PageSize <= 0 {
		return nil, fmt.Errorf("SEARCH_PAGE_SIZE must be positive")
	}
	if _, _, err := net.SplitHostPort(c.BindAddr); err != nil {
		return nil, fmt.Errorf("WEB_BIND_ADDR %q is not a host:port address", c.BindAddr)
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
