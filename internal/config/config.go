package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fardannozami/streak-bot/internal/domain"
)

type Config struct {
	SQLitePath      string
	GroupID         string
	BotPhone        string
	ReplyDelayMinMs int  // Minimum delay before reply (milliseconds)
	ReplyDelayMaxMs int  // Maximum delay before reply (milliseconds), 0 = use min as fixed
	ShowTyping      bool // Show typing indicator during delay

	Location          *time.Location
	ReleaseDate       domain.Day
	FreezeQuotaFree   int
	FreezeQuotaPaid   int
	ConsistencyWindow int

	RedisAddr     string // empty = keep the leaderboard in SQLite
	RedisPassword string
	RedisDB       int

	MetricsAddr        string // empty = no metrics endpoint
	RateLimitPerMinute int

	LogLevel string
	LogPath  string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	loc, err := time.LoadLocation(getenv("TIMEZONE", "Local"))
	if err != nil {
		log.Printf("Invalid TIMEZONE, falling back to local time: %v", err)
		loc = time.Local
	}

	release, err := domain.ParseDay(getenv("APP_RELEASE_DATE", "2025-01-01"))
	if err != nil {
		log.Fatalf("Invalid APP_RELEASE_DATE: %v", err)
	}

	return Config{
		SQLitePath:      getenv("SQLITE_PATH", "./data/streak.db"),
		GroupID:         getenv("GROUP_ID", ""),
		BotPhone:        getenv("BOT_PHONE", ""),
		ReplyDelayMinMs: getenvInt("REPLY_DELAY_MIN_MS", 0),
		ReplyDelayMaxMs: getenvInt("REPLY_DELAY_MAX_MS", 0),
		ShowTyping:      getenvBool("SHOW_TYPING", false),

		Location:          loc,
		ReleaseDate:       release,
		FreezeQuotaFree:   getenvInt("FREEZE_QUOTA_FREE", 1),
		FreezeQuotaPaid:   getenvInt("FREEZE_QUOTA_PREMIUM", 3),
		ConsistencyWindow: getenvInt("CONSISTENCY_WINDOW_DAYS", 30),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		MetricsAddr:        getenv("METRICS_ADDR", ""),
		RateLimitPerMinute: getenvInt("RATE_LIMIT_PER_MINUTE", 20),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogPath:  getenv("LOG_PATH", "./logs/bot.log"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
