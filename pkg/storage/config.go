package storage

import "time"

// Config for the storage backend and its optional satellites (Redis cache,
// S3 guide storage).
type Config struct {
	// SQLite config
	SQLitePath    string
	BusyTimeout   time.Duration
	QueryTimeout  time.Duration

	// S3 config (guide PDF storage)
	S3Enabled      bool
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	PresignExpiry  time.Duration

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled bool
	CacheTTL     map[string]time.Duration
	L1CacheSize  int // Entries in the in-process LRU
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		SQLitePath:      "data/catalog.db",
		BusyTimeout:     5 * time.Second,
		QueryTimeout:    10 * time.Second,
		S3Region:        "us-east-1",
		PresignExpiry:   15 * time.Minute,
		RedisDB:         0,
		RedisMaxRetries: 3,
		RedisPoolSize:   10,
		CacheEnabled:    true,
		CacheTTL: map[string]time.Duration{
			"part":      15 * time.Minute,
			"guide":     30 * time.Minute,
			"list":      5 * time.Minute,
			"stats":     10 * time.Minute,
			"dashboard": 1 * time.Minute,
		},
		L1CacheSize: 1024,
	}
}
