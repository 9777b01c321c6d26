package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StoragePool   = "pool"
	StorageSQL    = "sql"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port              string
	StorageDriver     string
	DatabaseURL       string
	DBMaxConns        int
	DBMinConns        int
	DBMaxConnLifetime time.Duration
	CacheDriver       string
	RedisURL          string
	CacheTTL          time.Duration
	CORSOrigins       []string
	RequestTimeoutSec int
	Timezone          string
	SeedSampleData    bool
	LogLevel          string
}

// Load lê o ambiente, depois de aplicar um .env opcional no diretório atual.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dbURL := os.Getenv("DATABASE_URL")
	storage := strings.ToLower(os.Getenv("STORAGE_DRIVER"))
	if storage == "" {
		storage = StorageMemory
		if dbURL != "" {
			storage = StoragePool
		}
	}
	cors := os.Getenv("CORS_ORIGINS")
	if cors == "" {
		cors = "http://localhost:8080,http://localhost:5173"
	}
	var origins []string
	for _, o := range strings.Split(cors, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	return &Config{
		Port:              port,
		StorageDriver:     storage,
		DatabaseURL:       dbURL,
		DBMaxConns:        getInt("DB_MAX_CONNS", 0),
		DBMinConns:        getInt("DB_MIN_CONNS", 0),
		DBMaxConnLifetime: getDuration("DB_MAX_CONN_LIFETIME", 0),
		CacheDriver:       strings.ToLower(getEnv("CACHE_DRIVER", CacheMemory)),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:          getDuration("CACHE_TTL", 30*time.Second),
		CORSOrigins:       origins,
		RequestTimeoutSec: getInt("REQUEST_TIMEOUT_SEC", 15),
		Timezone:          getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		SeedSampleData:    getBool("SEED_SAMPLE_DATA", storage == StorageMemory),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// Location resolves Timezone, falling back to UTC when the zone database lacks it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

// getDuration aceita "30s"/"5m" ou um número de segundos.
func getDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return d
}

func getBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return d
}
