package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Redis   RedisConfig
	DB      DBConfig
	Auth    AuthConfig
	Storage StorageConfig
	GRPC    GRPCConfig
	Log     LogConfig
	Seed    SeedConfig
}

type AppConfig struct {
	Env         string
	Port        string
	CORSOrigins []string
	RateLimit   string
}

type DBConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type StorageConfig struct {
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
	MediaDir    string
	MediaURL    string
}

type GRPCConfig struct {
	Port string
}

type LogConfig struct {
	Level  string
	Format string
}

// SeedConfig drives cmd/seed only.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	RandomSeed    int64
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	randomSeed, _ := strconv.ParseInt(getEnv("SEED_RANDOM_SEED", "0"), 10, 64)
	tokenTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		tokenTTL = 24 * time.Hour
	}

	return Config{
		App: AppConfig{
			Env:         getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
			RateLimit:   getEnv("RATE_LIMIT", "300-M"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "vgroup"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  tokenTTL,
		},
		Storage: StorageConfig{
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3Region:    getEnv("S3_REGION", "ap-southeast-1"),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
			MediaDir:    getEnv("MEDIA_DIR", "./uploads"),
			MediaURL:    getEnv("MEDIA_URL", "/uploads"),
		},
		GRPC: GRPCConfig{
			Port: getEnv("GRPC_PORT", "50051"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@vgroup.co.th"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "changeme123"),
			AdminName:     getEnv("SEED_ADMIN_NAME", "V-GROUP Admin"),
			RandomSeed:    randomSeed,
		},
	}
}

// PostgresDSN prefers DB_DSN and falls back to the discrete DB_* settings.
func (c DBConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
