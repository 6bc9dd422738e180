package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Storage drivers
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL        string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		ReadTimeout    string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout   string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		MaxUploadMB    int64    `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		URI             string `yaml:"uri" env:"MONGO_URI"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		ConnectTimeout  string `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Driver        string `yaml:"driver" env:"STORAGE_DRIVER"`
		S3Bucket      string `yaml:"s3_bucket" env:"STORAGE_S3_BUCKET"`
		S3Region      string `yaml:"s3_region" env:"STORAGE_S3_REGION"`
		S3Endpoint    string `yaml:"s3_endpoint" env:"STORAGE_S3_ENDPOINT"`
		S3PublicURL   string `yaml:"s3_public_url" env:"STORAGE_S3_PUBLIC_URL"`
		S3ForcePath   bool   `yaml:"s3_force_path_style" env:"STORAGE_S3_FORCE_PATH_STYLE"`
		S3ObjectACL   string `yaml:"s3_object_acl" env:"STORAGE_S3_OBJECT_ACL"`
		S3KeyPrefix   string `yaml:"s3_key_prefix" env:"STORAGE_S3_KEY_PREFIX"`
		UploadsSubdir string `yaml:"uploads_subdir" env:"STORAGE_UPLOADS_SUBDIR"`
	} `yaml:"storage"`

	Vision struct {
		APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
		Model   string `yaml:"model" env:"VISION_MODEL"`
		Timeout string `yaml:"timeout" env:"VISION_TIMEOUT"`
	} `yaml:"vision"`

	Authorization struct {
		// EnforceOwnerOnDelete restricts community/post/reply deletion to the admin or author.
		EnforceOwnerOnDelete bool `yaml:"enforce_owner_on_delete" env:"AUTHZ_ENFORCE_OWNER_ON_DELETE"`
	} `yaml:"authorization"`

	Users struct {
		DefaultProfileImage string `yaml:"default_profile_image" env:"USERS_DEFAULT_PROFILE_IMAGE"`
	} `yaml:"users"`

	Seed struct {
		Enabled       bool   `yaml:"enabled" env:"SEED_ENABLED"`
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, .env files and environment variables.
// Precedence (lowest to highest): defaults, YAML file, process environment. Values
// from .env only fill variables that are not already set in the environment.
func LoadConfig(configPath string, envFiles ...string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadDotEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv loads the given .env files, skipping ones that do not exist.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "90s"
	config.Server.MaxUploadMB = 10

	config.Database.Driver = DriverMongo
	config.Database.URI = "mongodb://localhost:27017"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "greenleaf"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.ConnectTimeout = "10s"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "greenleaf.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Driver = StorageLocal
	config.Storage.S3Region = "us-east-1"
	config.Storage.S3ObjectACL = "public-read"
	config.Storage.UploadsSubdir = "images"

	config.Vision.Model = "gemini-1.5-pro"
	config.Vision.Timeout = "60s"

	config.Users.DefaultProfileImage = "https://www.gravatar.com/avatar/?d=mp"

	config.Seed.AdminEmail = "admin@greenleaf.app"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverMongo:
		if config.Database.URI == "" {
			return fmt.Errorf("database uri is required for the mongo driver")
		}
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	for name, value := range map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"vision timeout":              config.Vision.Timeout,
		"server read timeout":         config.Server.ReadTimeout,
		"server write timeout":        config.Server.WriteTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Storage.Driver {
	case StorageLocal:
		if config.Server.StoragePath == "" {
			return fmt.Errorf("server storage path is required for local storage")
		}
	case StorageS3:
		if config.Storage.S3Bucket == "" {
			return fmt.Errorf("s3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// PublicBaseURL is the externally visible base URL of the server.
func (c *Config) PublicBaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}
