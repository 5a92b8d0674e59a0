package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/survey-platform/models"
)

const devJWTSecret = "dev-secret-change-me"

// Config is everything the server reads from the environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	RecaptchaDisabled bool
	RecaptchaProject  string
	RecaptchaSiteKey  string
	RecaptchaAPIKey   string
	RecaptchaMinScore float64

	RedisURL string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	VoteRatePerMin   int
	CreateRatePerMin int
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "error", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RECAPTCHA_MIN_SCORE", 0.5)
	v.SetDefault("SUPABASE_BUCKET", "survey_uploads")
	v.SetDefault("VOTE_RATE_PER_MIN", 30)
	v.SetDefault("CREATE_RATE_PER_MIN", 10)

	cfg := Config{
		Env:               v.GetString("ENV"),
		Port:              v.GetString("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		RecaptchaDisabled: v.GetBool("RECAPTCHA_DISABLED"),
		RecaptchaProject:  v.GetString("RECAPTCHA_PROJECT"),
		RecaptchaSiteKey:  v.GetString("RECAPTCHA_SITE_KEY"),
		RecaptchaAPIKey:   v.GetString("RECAPTCHA_API_KEY"),
		RecaptchaMinScore: v.GetFloat64("RECAPTCHA_MIN_SCORE"),
		RedisURL:          v.GetString("REDIS_URL"),
		SupabaseURL:       v.GetString("SUPABASE_URL"),
		SupabaseKey:       v.GetString("SUPABASE_KEY"),
		SupabaseBucket:    v.GetString("SUPABASE_BUCKET"),
		VoteRatePerMin:    v.GetInt("VOTE_RATE_PER_MIN"),
		CreateRatePerMin:  v.GetInt("CREATE_RATE_PER_MIN"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "dev" {
			return Config{}, fmt.Errorf("JWT_SECRET must be set when ENV=%s", cfg.Env)
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if !cfg.RecaptchaDisabled && (cfg.RecaptchaProject == "" || cfg.RecaptchaSiteKey == "") {
		if cfg.Env != "dev" {
			return Config{}, fmt.Errorf("RECAPTCHA_PROJECT and RECAPTCHA_SITE_KEY are required unless RECAPTCHA_DISABLED=true")
		}
		cfg.RecaptchaDisabled = true
	}
	return cfg, nil
}

// DSN prefers DATABASE_URL over the individual DB_* settings.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ConnectDB opens PostgreSQL and migrates the schema.
func ConnectDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	slog.Info("connected to PostgreSQL and migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
