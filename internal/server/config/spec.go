package config

// ServerConfig is the root configuration for sigstream-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Stream  StreamSection  `koanf:"stream"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Redis RedisConfig `koanf:"redis"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// CORSAllowedOrigins lists origins allowed by CORS. "*" allows any.
	// Empty disables CORS headers.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimit is the number of requests per second per client IP.
	// 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`

	// TrustedProxies lists proxy addresses or CIDR prefixes whose
	// X-Forwarded-For and X-Real-IP headers identify the client. Empty means
	// the peer address is always the client.
	TrustedProxies []string `koanf:"trusted_proxies"`

	EnableAccessLog bool `koanf:"enable_access_log"`
}

// RedisConfig configures the RESP protocol front end.
type RedisConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Addr      string `koanf:"addr"`
	RateLimit int    `koanf:"rate_limit"`
}

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// StorageSection selects and tunes the message log backend.
type StorageSection struct {
	Backend string        `koanf:"backend"`
	DataDir string        `koanf:"data_dir"`
	Badger  BadgerSection `koanf:"badger"`
	Redis   RedisStore    `koanf:"redis"`
}

// BadgerSection tunes the badger backend.
type BadgerSection struct {
	GCInterval string `koanf:"gc_interval"`
	SyncWrites bool   `koanf:"sync_writes"`
	CacheSize  int64  `koanf:"cache_size"`
}

// RedisStore configures the connection used by the redis backend.
type RedisStore struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"pool_size"`
}

// StreamSection configures stream reads.
type StreamSection struct {
	// DefaultLimit is used when a read does not specify a limit.
	DefaultLimit int `koanf:"default_limit"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
