package config

// Default configuration values.
const (
	DefaultHTTPAddr       = "127.0.0.1:8000"
	DefaultHTTPRateLimit  = 0
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultRedisRateLimit = 1000

	DefaultBackend          = BackendMemory
	DefaultDataDir          = "/var/lib/sigstream/data"
	DefaultBadgerGCInterval = "10m"
	DefaultBadgerCacheSize  = 64 << 20

	DefaultRedisStoreAddr = "127.0.0.1:6379"
	DefaultRedisPoolSize  = 10

	DefaultStreamLimit = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				RateLimit:       DefaultHTTPRateLimit,
				EnableAccessLog: true,
			},
			Redis: RedisConfig{
				Enabled:   false,
				Addr:      DefaultRedisAddr,
				RateLimit: DefaultRedisRateLimit,
			},
		},
		Storage: StorageSection{
			Backend: DefaultBackend,
			DataDir: DefaultDataDir,
			Badger: BadgerSection{
				GCInterval: DefaultBadgerGCInterval,
				SyncWrites: true,
				CacheSize:  DefaultBadgerCacheSize,
			},
			Redis: RedisStore{
				Addr:     DefaultRedisStoreAddr,
				PoolSize: DefaultRedisPoolSize,
			},
		},
		Stream: StreamSection{
			DefaultLimit: DefaultStreamLimit,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
