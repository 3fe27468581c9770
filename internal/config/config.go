package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendMysql  = "mysql"
)

type Config struct {
	AppPort        string
	StoreBackend   string
	DataFile       string
	CacheTTL       time.Duration
	DbHost         string
	DbPort         string
	DbUser         string
	DbPassword     string
	DbName         string
	DbParams       string
	TrustedProxies []string
}

func LoadConfig() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		StoreBackend:   normalizeBackend(getEnv("STORE_BACKEND", BackendFile)),
		DataFile:       getEnv("DATA_FILE", "data/tasks.json"),
		CacheTTL:       parseCacheTTL(os.Getenv("CACHE_TTL")),
		DbHost:         getEnv("MYSQL_HOST", "db"),
		DbPort:         getEnv("MYSQL_PORT", "3306"),
		DbUser:         getEnv("MYSQL_USER", "taskdeck"),
		DbPassword:     getEnv("MYSQL_PASSWORD", "taskdeck"),
		DbName:         getEnv("MYSQL_DATABASE", "taskdeck"),
		DbParams:       getEnv("MYSQL_PARAMS", "parseTime=true&multiStatements=true"),
		TrustedProxies: parseTrustedProxies(os.Getenv("TRUSTED_PROXIES")),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func normalizeBackend(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case BackendMemory:
		return BackendMemory
	case BackendMysql:
		return BackendMysql
	default:
		return BackendFile
	}
}

// parseCacheTTL accepts a Go duration string; empty or invalid values fall
// back to 30s, and "0" disables the query cache.
func parseCacheTTL(value string) time.Duration {
	if strings.TrimSpace(value) == "" {
		return 30 * time.Second
	}
	ttl, err := time.ParseDuration(value)
	if err != nil || ttl < 0 {
		return 30 * time.Second
	}
	return ttl
}

func parseTrustedProxies(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	proxies := make([]string, 0, len(parts))
	for _, part := range parts {
		proxy := strings.TrimSpace(part)
		if proxy == "" {
			continue
		}
		proxies = append(proxies, proxy)
	}

	if len(proxies) == 0 {
		return nil
	}

	return proxies
}
