package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Tracker journal backends.
const (
	TrackerMemory   = "memory"
	TrackerPostgres = "postgres"
	TrackerSQLite   = "sqlite"
)

// Config is the full process configuration, loaded once in main.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Registry RegistryConfig
	Tracker  TrackerConfig
	Auth     AuthConfig
	Log      LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Store     string
	URL       string
	TxTimeout time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	RelayBatch   int
	RelayPeriod  time.Duration
	EnsureTopics bool
}

// RegistryConfig points at the external person and location registries.
// Empty URLs select the in-process static registries.
type RegistryConfig struct {
	PersonURL   string
	LocationURL string
	CacheTTL    time.Duration
	Timeout     time.Duration
}

type TrackerConfig struct {
	Backend    string
	SQLitePath string
	Timeout    time.Duration
}

type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load builds a Config from environment variables so main stays lean.
func Load() (Config, error) {
	var errs []error
	dur := func(key string, def time.Duration) time.Duration {
		v, err := durationEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := Config{
		Server: Server{
			Addr:            envOr("DVI_ADDR", ":8080"),
			RequestTimeout:  dur("DVI_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: dur("DVI_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Store:     strings.ToLower(envOr("DVI_STORE", StoreMemory)),
			URL:       os.Getenv("DATABASE_URL"),
			TxTimeout: dur("DVI_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:   envOr("KAFKA_AUDIT_TOPIC", "dvi.audit"),
			RelayBatch:   100,
			RelayPeriod:  dur("DVI_RELAY_PERIOD", 2*time.Second),
			EnsureTopics: os.Getenv("KAFKA_ENSURE_TOPICS") != "false",
		},
		Registry: RegistryConfig{
			PersonURL:   os.Getenv("PERSON_REGISTRY_URL"),
			LocationURL: os.Getenv("LOCATION_REGISTRY_URL"),
			CacheTTL:    dur("DVI_REGISTRY_CACHE_TTL", 5*time.Minute),
			Timeout:     dur("DVI_REGISTRY_TIMEOUT", 3*time.Second),
		},
		Tracker: TrackerConfig{
			Backend:    strings.ToLower(os.Getenv("TRACKER_BACKEND")),
			SQLitePath: envOr("TRACKER_SQLITE_PATH", "dvi-tracker.db"),
			Timeout:    dur("DVI_TRACKER_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			// Development default; override in every real deployment.
			JWTSigningKey: envOr("DVI_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:        envOr("DVI_JWT_ISSUER", "dvi"),
			Audience:      envOr("DVI_JWT_AUDIENCE", "dvi-api"),
		},
		Log: LogConfig{
			Level:  envOr("DVI_LOG_LEVEL", "info"),
			Format: envOr("DVI_LOG_FORMAT", "json"),
		},
	}

	if cfg.Tracker.Backend == "" {
		cfg.Tracker.Backend = defaultTracker(cfg.Database.Store)
	}
	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required when DVI_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown DVI_STORE %q", c.Database.Store)
	}

	// Postgres journals join the store tx. Memory and sqlite journals only run
	// beside the memory store and are written last in each unit.
	switch c.Tracker.Backend {
	case TrackerMemory, TrackerSQLite:
		if c.Database.Store != StoreMemory {
			return fmt.Errorf("TRACKER_BACKEND=%s requires DVI_STORE=memory", c.Tracker.Backend)
		}
	case TrackerPostgres:
		if c.Database.Store != StorePostgres {
			return errors.New("TRACKER_BACKEND=postgres requires DVI_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown TRACKER_BACKEND %q", c.Tracker.Backend)
	}
	if c.Tracker.Backend == TrackerSQLite && c.Tracker.SQLitePath == "" {
		return errors.New("TRACKER_SQLITE_PATH is required when TRACKER_BACKEND=sqlite")
	}
	return nil
}

func defaultTracker(store string) string {
	if store == StorePostgres {
		return TrackerPostgres
	}
	return TrackerMemory
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	// Bare integers are seconds.
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, raw)
	}
	return time.Duration(secs) * time.Second, nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
