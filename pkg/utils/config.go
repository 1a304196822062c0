package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Upload   UploadConfig
	Draft    DraftConfig
	CORS     CORSConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

// UploadConfig points at the image hosting API.
type UploadConfig struct {
	BaseURL    string
	CloudName  string
	APIKey     string
	APISecret  string
	Preset     string
	Folder     string
	Timeout    time.Duration
	MaxSizeMB  int
	RatePerSec float64
	RateBurst  int
}

type DraftConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "movie-catalog")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("UPLOAD_BASE_URL", "https://api.cloudinary.com/v1_1")
	viper.SetDefault("UPLOAD_FOLDER", "movies")
	viper.SetDefault("UPLOAD_TIMEOUT", "30s")
	viper.SetDefault("UPLOAD_MAX_SIZE_MB", 10)
	viper.SetDefault("UPLOAD_RATE_PER_SEC", 5.0)
	viper.SetDefault("UPLOAD_RATE_BURST", 5)
	viper.SetDefault("DRAFT_IDLE_TTL", "30m")
	viper.SetDefault("DRAFT_SWEEP_INTERVAL", "1m")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// .env is optional, the environment wins anyway
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Upload: UploadConfig{
			BaseURL:    viper.GetString("UPLOAD_BASE_URL"),
			CloudName:  viper.GetString("UPLOAD_CLOUD_NAME"),
			APIKey:     viper.GetString("UPLOAD_API_KEY"),
			APISecret:  viper.GetString("UPLOAD_API_SECRET"),
			Preset:     viper.GetString("UPLOAD_PRESET"),
			Folder:     viper.GetString("UPLOAD_FOLDER"),
			Timeout:    viper.GetDuration("UPLOAD_TIMEOUT"),
			MaxSizeMB:  viper.GetInt("UPLOAD_MAX_SIZE_MB"),
			RatePerSec: viper.GetFloat64("UPLOAD_RATE_PER_SEC"),
			RateBurst:  viper.GetInt("UPLOAD_RATE_BURST"),
		},
		Draft: DraftConfig{
			IdleTTL:       viper.GetDuration("DRAFT_IDLE_TTL"),
			SweepInterval: viper.GetDuration("DRAFT_SWEEP_INTERVAL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	return config, nil
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
