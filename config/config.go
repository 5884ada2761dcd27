// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"student-progress-dashboard/app/progress"
)

// Config holds every setting the service reads at startup.
type Config struct {
	Env  string
	Port string

	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig

	JWTSecret        string
	JWTRefreshSecret string
	AdminUsername    string
	AdminPassword    string

	LeetCode LeetCodeConfig

	SyncConcurrency int
	TrackedWeeks    int

	Thresholds progress.Thresholds
	Badges     progress.BadgeRules
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig configures the dashboard cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
}

type LeetCodeConfig struct {
	URL   string
	RPS   float64
	Burst int
}

// LoadEnv loads .env into the process environment. A missing file is fine.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Env:  getString("APP_ENV", "development"),
		Port: getString("PORT", "8080"),
		Postgres: PostgresConfig{
			Host:     getString("DB_HOST", "localhost"),
			Port:     getString("DB_PORT", "5432"),
			User:     getString("DB_USER", "postgres"),
			Password: getString("DB_PASSWORD", ""),
			Name:     getString("DB_NAME", "student_progress"),
			SSLMode:  getString("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getString("MONGO_URI", "mongodb://localhost:27017"),
			Database: getString("MONGO_DB", "student_progress"),
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", ""),
			Password: getString("REDIS_PASSWORD", ""),
			TTL:      getDuration("CACHE_TTL", 30*time.Second),
		},
		JWTSecret:        getString("JWT_SECRET", ""),
		JWTRefreshSecret: getString("JWT_REFRESH_SECRET", ""),
		AdminUsername:    getString("ADMIN_USERNAME", "admin"),
		AdminPassword:    getString("ADMIN_PASSWORD", ""),
		LeetCode: LeetCodeConfig{
			URL:   getString("LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
			RPS:   getFloat("LEETCODE_RPS", 2),
			Burst: getInt("LEETCODE_BURST", 4),
		},
		SyncConcurrency: getInt("SYNC_CONCURRENCY", 4),
		TrackedWeeks:    getInt("TRACKED_WEEKS", 4),
	}

	def := progress.DefaultThresholds()
	cfg.Thresholds = progress.Thresholds{
		Excellent: getFloat("TIER_EXCELLENT", def.Excellent),
		Good:      getFloat("TIER_GOOD", def.Good),
		Active:    getFloat("TIER_ACTIVE", def.Active),
	}

	rules := progress.DefaultBadgeRules()
	cfg.Badges = progress.BadgeRules{
		StreakDays:          getInt("BADGE_STREAK_DAYS", rules.StreakDays),
		StreakMinDaily:      getInt("BADGE_STREAK_MIN_DAILY", rules.StreakMinDaily),
		CenturyTotal:        getInt("BADGE_CENTURY_TOTAL", rules.CenturyTotal),
		ComebackGrowth:      getFloat("BADGE_COMEBACK_GROWTH", rules.ComebackGrowth),
		ComebackMinIncrease: getInt("BADGE_COMEBACK_MIN_INCREMENT", rules.ComebackMinIncrease),
		TopperRanks:         getInt("BADGE_TOPPER_RANKS", rules.TopperRanks),
		ChallengeDays:       getInt("BADGE_CHALLENGE_DAYS", rules.ChallengeDays),
	}

	if cfg.JWTSecret == "" && cfg.Env == "production" {
		return nil, errors.New("JWT_SECRET is required in production")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret"
	}
	// Downstream token helpers read the secrets straight from the environment.
	os.Setenv("JWT_SECRET", cfg.JWTSecret)
	if cfg.JWTRefreshSecret != "" {
		os.Setenv("JWT_REFRESH_SECRET", cfg.JWTRefreshSecret)
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
