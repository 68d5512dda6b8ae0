package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendAuto   = "auto"
)

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	DSN string // Data Source Name
}

type LocalStoreConfig struct {
	Path string
}

type LogConfig struct {
	Mode string
	File string
}

// StorefrontConfig is everything cmd/storefront needs.
type StorefrontConfig struct {
	Server       ServerConfig
	Backend      string
	DB           DBConfig
	Local        LocalStoreConfig
	Log          LogConfig
	SyncPoll     time.Duration
	RequireImage bool
	// AdminDevPassword gates the admin panel in development only. It is not an auth mechanism.
	AdminDevPassword string
	SessionSecret    string
}

type DevServerConfig struct {
	Host string
	Port string
	Root string
}

// LoadDotEnv reads .env when present; a missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// LoadProductDBConfig returns the DSN of the remote product table. Empty means "not configured".
func LoadProductDBConfig() DBConfig {
	return DBConfig{DSN: GetEnv("PRODUCT_DB_DSN", "")}
}

func LoadServerConfig(defaultPort string) ServerConfig {
	port := defaultPort
	if envPort := os.Getenv("SERVER_PORT"); envPort != "" {
		port = envPort
	}
	return ServerConfig{Port: ":" + port}
}

func LoadStorefrontConfig() StorefrontConfig {
	backend := strings.ToLower(GetEnv("STORE_BACKEND", BackendAuto))
	switch backend {
	case BackendLocal, BackendRemote, BackendAuto:
	default:
		backend = BackendAuto
	}

	return StorefrontConfig{
		Server:  LoadServerConfig("8080"),
		Backend: backend,
		DB:      LoadProductDBConfig(),
		Local:   LocalStoreConfig{Path: GetEnv("LOCAL_STORE_PATH", "storefront.db")},
		Log: LogConfig{
			Mode: GetEnv("LOG_MODE", "development"),
			File: GetEnv("LOG_FILE", ""),
		},
		SyncPoll:         time.Duration(GetEnvAsInt("SYNC_POLL_SECONDS", 5)) * time.Second,
		RequireImage:     GetEnvAsBool("REQUIRE_PRODUCT_IMAGE", true),
		AdminDevPassword: GetEnv("ADMIN_DEV_PASSWORD", "admin123"),
		SessionSecret:    GetEnv("SESSION_SECRET", "dev-session-secret-change-me"),
	}
}

func LoadDevServerConfig() DevServerConfig {
	return DevServerConfig{
		Host: GetEnv("DEV_SERVER_HOST", "localhost"),
		Port: GetEnv("DEV_SERVER_PORT", "3000"),
		Root: GetEnv("DEV_SERVER_ROOT", "."),
	}
}

// GetEnv returns the environment variable if set, or fallback.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int) int {
	strValue := GetEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	strValue := GetEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
