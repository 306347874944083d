package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"katalog-produk/models"
)

// Supported product store drivers
const (
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverS3        = "s3"
)

// ErrInvalidConfig is returned by Validate for unusable settings
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all runtime settings of the catalog viewer
type Config struct {
	Env        string        `yaml:"env"`
	Port       string        `yaml:"port"`
	BaseURL    string        `yaml:"base_url"`
	Store      StoreConfig   `yaml:"store"`
	Scanner    ScannerConfig `yaml:"scanner"`
	ImageCache string        `yaml:"image_cache_dir"`
	ChromePath string        `yaml:"chrome_path"`
	Categories []string      `yaml:"categories"`
}

// StoreConfig selects and configures the remote document store
type StoreConfig struct {
	Driver     string          `yaml:"driver"`
	Collection string          `yaml:"collection"`
	Firestore  FirestoreConfig `yaml:"firestore"`
	Postgres   PostgresConfig  `yaml:"postgres"`
	SQLite     SQLiteConfig    `yaml:"sqlite"`
	S3         S3Config        `yaml:"s3"`
}

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	DatabaseID      string `yaml:"database_id"`
	CredentialsFile string `yaml:"credentials_file"`
	Endpoint        string `yaml:"endpoint"`
}

type PostgresConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// ScannerConfig configures the camera capability
type ScannerConfig struct {
	Enabled     bool    `yaml:"enabled"`
	FPS         int     `yaml:"fps"`
	BoxWidth    int     `yaml:"box_width"`
	BoxHeight   int     `yaml:"box_height"`
	AspectRatio float64 `yaml:"aspect_ratio"`
}

// Capability converts the scanner settings into the capability configuration
func (s ScannerConfig) Capability() models.ScannerConfig {
	return models.ScannerConfig{
		FacingMode:  "environment",
		FPS:         s.FPS,
		BoxWidth:    s.BoxWidth,
		BoxHeight:   s.BoxHeight,
		AspectRatio: s.AspectRatio,
	}
}

// Default returns the configuration used when nothing else is set
func Default() Config {
	return Config{
		Env:  "development",
		Port: "8080",
		Store: StoreConfig{
			Driver:     DriverFirestore,
			Collection: "products",
			Firestore:  FirestoreConfig{DatabaseID: "(default)"},
			Postgres:   PostgresConfig{Port: "5432", SSLMode: "disable"},
			SQLite:     SQLiteConfig{Path: "katalog.db"},
			S3:         S3Config{Region: "us-east-1"},
		},
		Scanner: ScannerConfig{
			Enabled:     true,
			FPS:         10,
			BoxWidth:    250,
			BoxHeight:   250,
			AspectRatio: 1.0,
		},
		ImageCache: "cache/images",
	}
}

// Load builds the configuration from .env, an optional YAML file and the environment.
// Environment variables always win over the file.
func Load(path string) (Config, error) {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Overload(".env"); err != nil {
			log.Printf("⚠️  .env file not loaded, using system environment variables: %v", err)
		} else {
			log.Printf("✓ Loaded environment variables from .env")
		}
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		log.Printf("✓ Loaded config file %s", path)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides configuration values with environment variables that are set
func applyEnv(cfg *Config) {
	setString(&cfg.Env, "ENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.BaseURL, "BASE_URL")

	setString(&cfg.Store.Driver, "STORE_DRIVER")
	setString(&cfg.Store.Collection, "PRODUCTS_COLLECTION")

	setString(&cfg.Store.Firestore.ProjectID, "FIRESTORE_PROJECT_ID")
	setString(&cfg.Store.Firestore.DatabaseID, "FIRESTORE_DATABASE_ID")
	setString(&cfg.Store.Firestore.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&cfg.Store.Firestore.Endpoint, "FIRESTORE_ENDPOINT")

	setString(&cfg.Store.Postgres.URL, "DATABASE_URL")
	setString(&cfg.Store.Postgres.Host, "DB_HOST")
	setString(&cfg.Store.Postgres.Port, "DB_PORT")
	setString(&cfg.Store.Postgres.User, "DB_USER")
	setString(&cfg.Store.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Store.Postgres.Name, "DB_NAME")
	setString(&cfg.Store.Postgres.SSLMode, "DB_SSLMODE")

	setString(&cfg.Store.SQLite.Path, "SQLITE_PATH")

	setString(&cfg.Store.S3.Bucket, "S3_BUCKET")
	setString(&cfg.Store.S3.Region, "S3_REGION")
	setString(&cfg.Store.S3.Endpoint, "S3_ENDPOINT")
	setBool(&cfg.Store.S3.PathStyle, "S3_PATH_STYLE")
	setString(&cfg.Store.S3.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&cfg.Store.S3.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")

	setBool(&cfg.Scanner.Enabled, "SCANNER_ENABLED")
	setInt(&cfg.Scanner.FPS, "SCANNER_FPS")
	setInt(&cfg.Scanner.BoxWidth, "SCANNER_BOX_WIDTH")
	setInt(&cfg.Scanner.BoxHeight, "SCANNER_BOX_HEIGHT")
	setFloat(&cfg.Scanner.AspectRatio, "SCANNER_ASPECT_RATIO")

	setString(&cfg.ImageCache, "IMAGE_CACHE_DIR")
	setString(&cfg.ChromePath, "CHROME_PATH")

	if v := os.Getenv("CATALOG_CATEGORIES"); v != "" {
		var categories []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
		cfg.Categories = categories
	}

	// Remove leading colon if present (PORT from some hosts includes it)
	cfg.Port = strings.TrimPrefix(cfg.Port, ":")
}

// Validate rejects configurations that cannot produce a working store or scanner
func (c Config) Validate() error {
	if c.Store.Collection == "" {
		return fmt.Errorf("%w: store collection is required", ErrInvalidConfig)
	}

	switch c.Store.Driver {
	case DriverFirestore:
		if c.Store.Firestore.ProjectID == "" {
			return fmt.Errorf("%w: FIRESTORE_PROJECT_ID is required for the firestore driver", ErrInvalidConfig)
		}
	case DriverPostgres:
		pg := c.Store.Postgres
		if pg.URL == "" && (pg.Host == "" || pg.User == "" || pg.Name == "") {
			return fmt.Errorf("%w: set DATABASE_URL or DB_HOST, DB_USER, DB_NAME", ErrInvalidConfig)
		}
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite driver", ErrInvalidConfig)
		}
	case DriverS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("%w: S3_BUCKET is required for the s3 driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Scanner.FPS <= 0 || c.Scanner.BoxWidth <= 0 || c.Scanner.BoxHeight <= 0 || c.Scanner.AspectRatio <= 0 {
		return fmt.Errorf("%w: scanner fps, box size and aspect ratio must be positive", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	return "0.0.0.0:" + c.Port
}

// PublicBaseURL returns the base URL used by the headless browser to reach this server
func (c Config) PublicBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "http://localhost:" + c.Port
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️  Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = b
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}

func setFloat(dst *float64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️  Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = f
}
