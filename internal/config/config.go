package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "STOREFRONT"

// Credential store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Client holds the storefront client configuration
type Client struct {
	APIURL         string          `mapstructure:"api_url"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	LogLevel       string          `mapstructure:"log_level"`
	Credentials    CredentialStore `mapstructure:"credentials"`
	Breaker        BreakerConfig   `mapstructure:"breaker"`
}

// CredentialStore selects where the bearer credential is persisted.
type CredentialStore struct {
	Backend   string        `mapstructure:"backend"`
	Path      string        `mapstructure:"path"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	Profile   string        `mapstructure:"profile"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// BreakerConfig holds circuit breaker settings for the API client.
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// Server holds the development API server configuration
type Server struct {
	Addr            string        `mapstructure:"addr"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDatabase   string        `mapstructure:"mongo_database"`
	Seed            bool          `mapstructure:"seed"`
	LogLevel        string        `mapstructure:"log_level"`
}

// NewViper returns a viper instance reading STOREFRONT_* environment variables
// and, when configFile is not empty, the given file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setClientDefaults(v)
	setServerDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8001/api")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("log_level", "warn")
	v.SetDefault("credentials.backend", StoreSQLite)
	v.SetDefault("credentials.path", "storefront.db")
	v.SetDefault("credentials.redis_addr", "localhost:6379")
	v.SetDefault("credentials.redis_db", 0)
	v.SetDefault("credentials.profile", "default")
	v.SetDefault("credentials.ttl", 24*time.Hour)
	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.open_timeout", 30*time.Second)
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8001")
	v.SetDefault("server.jwt_secret", "storefront-dev-secret")
	v.SetDefault("server.token_ttl", 24*time.Hour)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.mongo_uri", "")
	v.SetDefault("server.mongo_database", "storefront")
	v.SetDefault("server.seed", true)
	v.SetDefault("server.log_level", "info")
}

// LoadClient unmarshals and validates the client configuration.
func LoadClient(v *viper.Viper) (*Client, error) {
	cfg := &Client{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to bind client config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadServer unmarshals and validates the server section.
func LoadServer(v *viper.Viper) (*Server, error) {
	// Unmarshal the whole tree so STOREFRONT_SERVER_* overrides apply.
	var root struct {
		Server Server `mapstructure:"server"`
	}
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to bind server config: %w", err)
	}
	cfg := &root.Server
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Client) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must be http or https, got %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}

	switch c.Credentials.Backend {
	case StoreSQLite:
		if c.Credentials.Path == "" {
			return errors.New("credentials.path is required for the sqlite backend")
		}
	case StoreRedis:
		if c.Credentials.RedisAddr == "" {
			return errors.New("credentials.redis_addr is required for the redis backend")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown credentials.backend %q", c.Credentials.Backend)
	}
	if c.Credentials.Profile == "" {
		return errors.New("credentials.profile is required")
	}
	return nil
}

func (s *Server) Validate() error {
	if s.Addr == "" {
		return errors.New("addr is required")
	}
	if s.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if s.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if s.MongoURI != "" && s.MongoDatabase == "" {
		return errors.New("mongo_database is required with mongo_uri")
	}
	return nil
}
