package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration
type Config struct {
	App     AppConfig     `yaml:"app"`
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Redis   RedisConfig   `yaml:"redis"`
	JWT     JWTConfig     `yaml:"jwt"`
	CORS    CORSConfig    `yaml:"cors"`
	Storage StorageConfig `yaml:"storage"`
}

// AppConfig application-level settings
type AppConfig struct {
	Env  string `yaml:"env"`
	Name string `yaml:"name"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DBConfig MySQL settings
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig token settings
type JWTConfig struct {
	Secret    string        `yaml:"-"`
	ExpiresIn time.Duration `yaml:"-"`
	RefreshIn time.Duration `yaml:"-"`
}

// UnmarshalYAML parses durations from strings like "24h". Absent
// fields keep whatever value the target already holds.
func (j *JWTConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Secret    string `yaml:"secret"`
		ExpiresIn string `yaml:"expires_in"`
		RefreshIn string `yaml:"refresh_in"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Secret != "" {
		j.Secret = raw.Secret
	}
	if raw.ExpiresIn != "" {
		d, err := time.ParseDuration(raw.ExpiresIn)
		if err != nil {
			return fmt.Errorf("jwt.expires_in: %w", err)
		}
		j.ExpiresIn = d
	}
	if raw.RefreshIn != "" {
		d, err := time.ParseDuration(raw.RefreshIn)
		if err != nil {
			return fmt.Errorf("jwt.refresh_in: %w", err)
		}
		j.RefreshIn = d
	}
	return nil
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// StorageConfig S3-compatible media storage settings
type StorageConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// Load reads a YAML config file and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing file is fine: env vars + defaults take over
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET)")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App:    AppConfig{Env: "local", Name: "flock-backend"},
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host:    "127.0.0.1",
			Port:    3306,
			User:    "flock",
			Name:    "flock",
			Charset: "utf8mb4",
		},
		Redis: RedisConfig{Host: "127.0.0.1", Port: 6379, PoolSize: 10},
		JWT:   JWTConfig{ExpiresIn: 24 * time.Hour, RefreshIn: 30 * 24 * time.Hour},
		CORS:  CORSConfig{AllowOrigins: "http://localhost:3000"},
	}
}

// applyEnv overrides config values from environment variables
func applyEnv(cfg *Config) {
	setString(&cfg.App.Env, "APP_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.DB.Host, "DB_HOST")
	setInt(&cfg.DB.Port, "DB_PORT")
	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
	setString(&cfg.Storage.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
	if cfg.Storage.Bucket != "" {
		cfg.Storage.Enabled = true
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// DSN builds the MySQL connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name, c.Charset)
}

// IsDevelopment reports whether the app runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "local" || c.App.Env == "dev" || c.App.Env == "development"
}
