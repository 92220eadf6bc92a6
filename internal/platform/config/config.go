package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ExecutorBaseURL        string
	ExecutorMaxConcurrent  int64
	ExecutorMaxRetries     int
	ExecutorRetryBackoff   time.Duration
	ExecutorCompileAllowMs int

	PenaltyPerWrongAttempt time.Duration
	LeaderboardCacheTTL    time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:                getEnv("API_PORT", "8080"),
		JWTKey:                 []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                 time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "user"),
		DBPassword:             getEnv("DB_PASSWORD", "password"),
		DBName:                 getEnv("DB_NAME", "codeclash_db"),
		DBSslMode:              getEnv("DB_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		ExecutorBaseURL:        getEnv("EXECUTOR_BASE_URL", "http://localhost:9090"),
		ExecutorMaxConcurrent:  int64(getEnvAsInt("EXECUTOR_MAX_CONCURRENT", 8)),
		ExecutorMaxRetries:     getEnvAsInt("EXECUTOR_MAX_RETRIES", 3),
		ExecutorRetryBackoff:   time.Duration(getEnvAsInt("EXECUTOR_RETRY_BACKOFF_MS", 250)) * time.Millisecond,
		ExecutorCompileAllowMs: getEnvAsInt("EXECUTOR_COMPILE_ALLOWANCE_MS", 10000),
		PenaltyPerWrongAttempt: time.Duration(getEnvAsInt("PENALTY_PER_WRONG_ATTEMPT_MINUTES", 20)) * time.Minute,
		LeaderboardCacheTTL:    time.Duration(getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 10)) * time.Second,
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
