package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	AppPort int

	DBDriver   string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	TelegramBotToken string
	BotID            int64

	// Team channel is the forum supergroup where every user gets a topic.
	UseTeamChannel bool
	TeamChannelID  int64

	TransportTimeout time.Duration
	LockTTL          time.Duration

	FallbackNotice  string
	UnsupportedText string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "topicrelay"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))

	cfg.DBDriver = cast.ToString(getOrReturnDefault("DB_DRIVER", DriverPostgres))
	cfg.SQLitePath = cast.ToString(getOrReturnDefault("SQLITE_PATH", "topicrelay.db"))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "topicrelay"))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", ""))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))
	cfg.BotID = cast.ToInt64(getOrReturnDefault("BOT_ID", 0))

	cfg.UseTeamChannel = cast.ToBool(getOrReturnDefault("USE_TEAM_CHANNEL", true))
	cfg.TeamChannelID = cast.ToInt64(getOrReturnDefault("TEAM_CHANNEL_ID", 0))

	cfg.TransportTimeout = cast.ToDuration(getOrReturnDefault("TRANSPORT_TIMEOUT", "10s"))
	cfg.LockTTL = cast.ToDuration(getOrReturnDefault("LOCK_TTL", "30s"))

	cfg.FallbackNotice = cast.ToString(getOrReturnDefault("FALLBACK_NOTICE",
		"Support is temporarily unavailable. Please write again a bit later."))
	cfg.UnsupportedText = cast.ToString(getOrReturnDefault("UNSUPPORTED_TEXT", "Unsupported message type"))

	return cfg
}

// RedisAddr returns host:port, or an empty string when Redis is not configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
