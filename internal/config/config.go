package config

import (
	"slices"
	"time"
)

// Storage drivers for the durable override store.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Backend    BackendConfig    `yaml:"backend"`
	PokeAPI    PokeAPIConfig    `yaml:"pokeapi"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Storage    StorageConfig    `yaml:"storage"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id,X-Client-Id,Accept-Language"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// BackendConfig points at the paginated document backend.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"BACKEND_BASE_URL"        env-default:"http://localhost:3000"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"BACKEND_REQUEST_TIMEOUT" env-default:"10s"`
	MaxRetries     uint64        `yaml:"max_retries"     env:"BACKEND_MAX_RETRIES"     env-default:"3"`
}

// PokeAPIConfig points at the public third-party API.
type PokeAPIConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"POKEAPI_BASE_URL"        env-default:"https://pokeapi.co/api/v2"`
	ListingLimit   int           `yaml:"listing_limit"   env:"POKEAPI_LISTING_LIMIT"   env-default:"200000"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"POKEAPI_REQUEST_TIMEOUT" env-default:"10s"`
	MaxRetries     uint64        `yaml:"max_retries"     env:"POKEAPI_MAX_RETRIES"     env-default:"3"`
	CacheSize      int           `yaml:"cache_size"      env:"POKEAPI_CACHE_SIZE"      env-default:"512"`
}

// EnrichmentConfig controls the background batch enrichment sequence.
type EnrichmentConfig struct {
	Enabled     bool          `yaml:"enabled"      env:"ENRICH_ENABLED"      env-default:"true"`
	BatchSize   int           `yaml:"batch_size"   env:"ENRICH_BATCH_SIZE"   env-default:"50"`
	BatchDelay  time.Duration `yaml:"batch_delay"  env:"ENRICH_BATCH_DELAY"  env-default:"200ms"`
	ItemTimeout time.Duration `yaml:"item_timeout" env:"ENRICH_ITEM_TIMEOUT" env-default:"15s"`
}

// CatalogConfig holds view-list settings.
type CatalogConfig struct {
	PageSize     int    `yaml:"page_size" env:"CATALOG_PAGE_SIZE" env-default:"20"`
	LanguagesRaw string `yaml:"languages" env:"CATALOG_LANGUAGES" env-default:"en,fr,ja,zh-Hans"`

	// Languages is parsed from LanguagesRaw during validation.
	Languages []string `yaml:"-" env:"-"`
}

// StorageConfig selects and configures the durable override store.
type StorageConfig struct {
	Driver     string         `yaml:"driver"      env:"STORAGE_DRIVER"      env-default:"sqlite"`
	SQLitePath string         `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH" env-default:"./data/pokedex.db"`
	Database   DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// RateLimitConfig limits write intents per client.
type RateLimitConfig struct {
	WritesPerMinute int           `yaml:"writes_per_minute" env:"RATE_LIMIT_WRITES_PER_MINUTE" env-default:"120"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}

// HasLanguage reports whether code is one of the configured display languages.
func (c CatalogConfig) HasLanguage(code string) bool {
	return slices.Contains(c.Languages, code)
}
