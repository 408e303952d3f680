package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Gemini    GeminiConfig
	FileStore FileStoreConfig
	Pipeline  PipelineConfig
	Upload    UploadConfig
}

type ServerConfig struct {
	Port  string
	Env   string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	TranscribeModel string
}

type FileStoreConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig holds the knobs for the batch evaluation pipeline.
// BatchSize controls how many candidates form one batch; MaxConcurrency
// bounds how many candidates are processed in parallel within a batch.
type PipelineConfig struct {
	BatchSize         int
	MaxConcurrency    int
	FetchMaxAttempts  int
	FetchInitialDelay time.Duration
	ExtractionTimeout time.Duration
	ScoringTimeout    time.Duration
}

type UploadConfig struct {
	MaxFileSize int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:  getEnv("PORT", "3000"),
			Env:   getEnv("ENV", "development"),
			Debug: getEnv("LOG_DEBUG", "") == "true",
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "roster_evaluator"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			TranscribeModel: getEnv("GEMINI_TRANSCRIBE_MODEL", "gemini-2.5-flash"),
		},
		FileStore: FileStoreConfig{
			BaseURL: getEnv("FILE_STORE_BASE_URL", "https://drive.google.com/uc?export=download&id="),
			Timeout: getEnvAsDuration("FILE_STORE_TIMEOUT", "60s"),
		},
		Pipeline: PipelineConfig{
			BatchSize:         getEnvAsInt("BATCH_SIZE", 10),
			MaxConcurrency:    getEnvAsInt("MAX_CONCURRENCY", 3),
			FetchMaxAttempts:  getEnvAsInt("FETCH_MAX_ATTEMPTS", 3),
			FetchInitialDelay: getEnvAsDuration("FETCH_INITIAL_DELAY", "1s"),
			ExtractionTimeout: getEnvAsDuration("EXTRACTION_TIMEOUT", "2m"),
			ScoringTimeout:    getEnvAsDuration("SCORING_TIMEOUT", "90s"),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
