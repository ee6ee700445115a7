package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string
	HTTPPort    string
	GRPCPort    string // health check + reflection

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NatsUrl       string

	// Object storage (S3 ou compatible)
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	S3PublicBaseURL   string

	// Sécurité
	JWTPublicKeyPath  string
	JWTIssuer         string
	AdminPasswordHash string // hash argon2id, vide = purge désactivée

	// Images
	ImageMaxDimension int
	ImageQuality      int
	ImageWorkers      int

	// Worker
	WorkerInterval time.Duration

	CORSOrigins []string

	// Telemetry
	OtelEndpoint string
}

// envFiles sont chargés s'ils existent ; l'ENV réel reste prioritaire
var envFiles = []string{".env.local", ".env"}

// Load charge la configuration depuis l'ENV ou utilise des défauts
func Load() (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "local"),
		ServiceName:       getEnv("SERVICE_NAME", "wall-service"),
		HTTPPort:          getEnv("PORT", "8080"),
		GRPCPort:          getEnv("GRPC_PORT", "50055"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		NatsUrl:           getEnv("NATS_URL", "nats://localhost:4222"),
		S3Region:          getEnv("AWS_S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("AWS_BUCKET_NAME", ""),
		S3AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
		JWTIssuer:         getEnv("JWT_ISSUER", "cenackle-identity"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		ImageMaxDimension: getEnvInt("IMAGE_MAX_DIMENSION", 1024),
		ImageQuality:      getEnvInt("IMAGE_JPEG_QUALITY", 85),
		ImageWorkers:      getEnvInt("IMAGE_WORKERS", 4),
		WorkerInterval:    getEnvDuration("WORKER_INTERVAL", 5*time.Second),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		OtelEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validation basique pour éviter de démarrer avec une config cassée
	if cfg.Env == "prod" {
		if cfg.AdminPasswordHash == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required in production")
		}
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("AWS_BUCKET_NAME is required in production")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
