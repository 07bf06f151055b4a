package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"production"`
	HTTPServer HTTPServer `yaml:"http_server"`
	PGSQL      PQSQL      `yaml:"pgsql"`
	Redis      Redis      `yaml:"redis"`
	Storage    Storage    `yaml:"storage"`
	Auth       Auth       `yaml:"auth"`
	Upload     Upload     `yaml:"upload"`
	CORS       CORS       `yaml:"cors"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
}

type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"0.0.0.0:8090"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"90s"`
}

type PQSQL struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"tangerine_photo"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// DSN returns the lib/pq connection string.
func (p PQSQL) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Storage selects and configures the object store backend.
type Storage struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"cos"`
	MinIO   MinIO  `yaml:"minio"`
	COS     COS    `yaml:"cos"`
}

type MinIO struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"tangerine-photos"`
	Secure    bool   `yaml:"secure" env:"MINIO_SECURE" env-default:"false"`
}

type COS struct {
	SecretID  string `yaml:"secret_id" env:"COS_SECRET_ID"`
	SecretKey string `yaml:"secret_key" env:"COS_SECRET_KEY"`
	Region    string `yaml:"region" env:"COS_REGION" env-default:"ap-guangzhou"`
	Bucket    string `yaml:"bucket" env:"COS_BUCKET" env-default:"tangerine-photo-dev-1253272222"`
	CDNURL    string `yaml:"cdn_url" env:"COS_CDN_URL"`
}

// Endpoint is the regional service endpoint used by the S3-protocol client.
func (c COS) Endpoint() string {
	return fmt.Sprintf("https://cos.%s.myqcloud.com", c.Region)
}

// PublicBaseURL returns the base under which stored objects are publicly
// reachable. Photo URLs are this value plus "/" plus the object key.
func (s Storage) PublicBaseURL() string {
	if strings.ToLower(s.Backend) == "minio" {
		scheme := "http"
		if s.MinIO.Secure {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s", scheme, s.MinIO.Endpoint, s.MinIO.Bucket)
	}

	if s.COS.CDNURL != "" {
		return strings.TrimRight(s.COS.CDNURL, "/")
	}
	return fmt.Sprintf("https://%s.cos.%s.myqcloud.com", s.COS.Bucket, s.COS.Region)
}

type Auth struct {
	AdminUsername     string        `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword     string        `yaml:"admin_password" env:"ADMIN_PASSWORD" env-default:"admin123"`
	AdminPasswordHash string        `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"tangerine-photo-secret-key-change-in-production"`
	TokenTTL          time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
}

type Upload struct {
	MaxFileSize      int64         `yaml:"max_file_size" env:"UPLOAD_MAX_FILE_SIZE" env-default:"31457280"`
	AllowedMimeTypes []string      `yaml:"allowed_mime_types" env:"UPLOAD_ALLOWED_MIME_TYPES" env-default:"image/jpeg,image/png,image/gif,image/webp,image/tiff,image/bmp,image/heic"`
	Timeout          time.Duration `yaml:"timeout" env:"UPLOAD_TIMEOUT" env-default:"60s"`
}

// RateLimit holds per-minute token bucket sizes.
type RateLimit struct {
	LoginPerMinute  int64 `yaml:"login_per_minute" env:"RATE_LIMIT_LOGIN" env-default:"10"`
	UploadPerMinute int64 `yaml:"upload_per_minute" env:"RATE_LIMIT_UPLOAD" env-default:"60"`
	VisitPerMinute  int64 `yaml:"visit_per_minute" env:"RATE_LIMIT_VISIT" env-default:"120"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Load reads configuration from path, or from the environment alone when
// path is empty. Environment variables override file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist at path: %s", path)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	return cfg
}
