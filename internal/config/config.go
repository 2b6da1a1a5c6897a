package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the YAML config path
const EnvConfigPath = "SURVEYHUB_CONFIG"

// Config holds the service settings. Values come from defaults, then an
// optional YAML file, then the environment.
type Config struct {
	Port               string        `yaml:"port"`
	LogLevel           string        `yaml:"log_level"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`

	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	Sources SourcesConfig `yaml:"sources"`
	Sync    SyncConfig    `yaml:"sync"`
}

type MongoConfig struct {
	URI          string `yaml:"uri"`
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Database     string `yaml:"database"`
	Collection   string `yaml:"collection"`
	RootUser     string `yaml:"root_user"`
	RootPassword string `yaml:"root_password"`
	MaxPoolSize  uint64 `yaml:"max_pool_size"`

	// readWrite application user created by init-db
	AppUser     string `yaml:"app_user"`
	AppPassword string `yaml:"app_password"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SourcesConfig struct {
	First      string        `yaml:"source1"`
	Second     string        `yaml:"source2"`
	Third      string        `yaml:"source3"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

type SyncConfig struct {
	LockKey string        `yaml:"lock_key"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Port:     "8000",
		LogLevel: "info",
		CacheTTL: 10 * time.Minute,
		Mongo: MongoConfig{
			Host:        "localhost",
			Port:        "27017",
			Database:    "surveyhub",
			Collection:  "responses",
			MaxPoolSize: 50,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Sources: SourcesConfig{
			First:      "https://numera-case.web.app/v1/survey/1/answers",
			Second:     "https://numera-case.web.app/v1/survey/2/answers",
			Third:      "https://numera-case.web.app/v1/survey/3/answers",
			Timeout:    30 * time.Second,
			MaxRetries: 5,
		},
		Sync: SyncConfig{
			LockKey: "surveyhub:sync:lock",
			LockTTL: 5 * time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// SURVEYHUB_CONFIG is consulted; no file at all is fine.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Host = getEnv("MONGO_IP", c.Mongo.Host)
	c.Mongo.Port = getEnv("MONGO_PORT", c.Mongo.Port)
	c.Mongo.Database = getEnv("MONGO_DBNAME", c.Mongo.Database)
	c.Mongo.Collection = getEnv("MONGO_COLLECTION", c.Mongo.Collection)
	c.Mongo.RootUser = getEnv("MONGO_ROOT_USER", c.Mongo.RootUser)
	c.Mongo.RootPassword = getEnv("MONGO_ROOT_PASSWORD", c.Mongo.RootPassword)
	c.Mongo.AppUser = getEnv("MONGO_USER", c.Mongo.AppUser)
	c.Mongo.AppPassword = getEnv("MONGO_PASSWORD", c.Mongo.AppPassword)

	c.Redis.Addr = strings.TrimPrefix(getEnv("REDIS_URI", c.Redis.Addr), "redis://")
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.Sources.First = getEnv("SOURCE1_URL", c.Sources.First)
	c.Sources.Second = getEnv("SOURCE2_URL", c.Sources.Second)
	c.Sources.Third = getEnv("SOURCE3_URL", c.Sources.Third)

	c.Sync.LockKey = getEnv("SYNC_LOCK_KEY", c.Sync.LockKey)

	var errs []error
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setInt("REDIS_DB", &c.Redis.DB)
	setInt("FETCH_MAX_RETRIES", &c.Sources.MaxRetries)
	setDuration("FETCH_TIMEOUT", &c.Sources.Timeout)
	setDuration("SYNC_LOCK_TTL", &c.Sync.LockTTL)
	setDuration("CACHE_TTL", &c.CacheTTL)

	if v := os.Getenv("MONGO_MAX_POOL_SIZE"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MONGO_MAX_POOL_SIZE: %w", err))
		} else {
			c.Mongo.MaxPoolSize = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.Database == "" {
		errs = append(errs, errors.New("mongo database name is required"))
	}
	if c.Mongo.Collection == "" {
		errs = append(errs, errors.New("mongo collection name is required"))
	}
	if c.Sources.First == "" || c.Sources.Second == "" || c.Sources.Third == "" {
		errs = append(errs, errors.New("all three source URLs are required"))
	}
	if c.Sources.Timeout <= 0 {
		errs = append(errs, errors.New("source fetch timeout must be positive"))
	}
	if c.Sources.MaxRetries <= 0 {
		errs = append(errs, errors.New("source max retries must be positive"))
	}
	if c.Sync.LockTTL <= 0 {
		errs = append(errs, errors.New("sync lock ttl must be positive"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache ttl must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// MongoURI returns the connection string, assembling it from host, port and
// root credentials when no URI is configured
func (c *Config) MongoURI() string {
	if c.Mongo.URI != "" {
		return c.Mongo.URI
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Mongo.Host, c.Mongo.Port),
		Path:   "/" + c.Mongo.Database,
	}
	if c.Mongo.RootUser != "" {
		u.User = url.UserPassword(c.Mongo.RootUser, c.Mongo.RootPassword)
		u.RawQuery = "authSource=admin"
	}
	return u.String()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
