package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Identity IdentityConfig `yaml:"identity"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// IdentityConfig holds the third-party identity provider settings. The
// machine-to-machine credentials are used for the management API, not for
// end-user authentication.
type IdentityConfig struct {
	Domain         string `yaml:"domain"`
	Audience       string `yaml:"audience"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	TokenCacheFile string `yaml:"token_cache_file"`
}

type StorageConfig struct {
	Driver          string `yaml:"driver"` // database, s3
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // optional, for S3-compatible stores
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	// DefaultCapacity is the per-user storage quota in bytes, applied when a
	// user has no explicit storage record.
	DefaultCapacity   int64 `yaml:"default_capacity"`
	MaxImageSize      int64 `yaml:"max_image_size"`
	MaxAttachmentSize int64 `yaml:"max_attachment_size"`
}

// RedisConfig for the optional async task queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "projectpulse.db",
		},
		JWT: JWTConfig{
			Secret: "projectpulse-secret-key-change-in-production",
		},
		Identity: IdentityConfig{
			TokenCacheFile: ".m2m.cache",
		},
		Storage: StorageConfig{
			Driver:            "database",
			Region:            "us-east-1",
			DefaultCapacity:   104857600, // 100MB
			MaxImageSize:      2000000,
			MaxAttachmentSize: 105906176,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if domain := os.Getenv("IDENTITY_DOMAIN"); domain != "" {
		c.Identity.Domain = domain
	}
	if audience := os.Getenv("IDENTITY_AUDIENCE"); audience != "" {
		c.Identity.Audience = audience
	}
	if clientID := os.Getenv("MACHINE_TO_MACHINE_CLIENT_ID"); clientID != "" {
		c.Identity.ClientID = clientID
	}
	if clientSecret := os.Getenv("MACHINE_TO_MACHINE_CLIENT_SECRET"); clientSecret != "" {
		c.Identity.ClientSecret = clientSecret
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		c.Storage.Bucket = bucket
	}
	if region := os.Getenv("STORAGE_REGION"); region != "" {
		c.Storage.Region = region
	}
	if endpoint := os.Getenv("STORAGE_ENDPOINT"); endpoint != "" {
		c.Storage.Endpoint = endpoint
	}
	if capacity := os.Getenv("STORAGE_DEFAULT_CAPACITY"); capacity != "" {
		if v, err := strconv.ParseInt(capacity, 10, 64); err == nil {
			c.Storage.DefaultCapacity = v
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
