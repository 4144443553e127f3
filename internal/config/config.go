package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Gemini     GeminiConfig
	ElevenLabs ElevenLabsConfig
	Cloudinary CloudinaryConfig
	Schedule   ScheduleConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite file path
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type GeminiConfig struct {
	APIKey string
}

type ElevenLabsConfig struct {
	APIKey        string
	AgentID       string
	PhoneNumberID string
	WebhookSecret string
	Timeout       time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	Timeout   time.Duration
}

type ScheduleConfig struct {
	Timezone string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "campaign_api"),
			Path:     getEnv("DATABASE_PATH", "./database.sqlite"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "secret"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", "24h"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:        getEnv("ELEVENLABS_API_KEY", ""),
			AgentID:       getEnv("ELEVENLABS_AGENT_ID", ""),
			PhoneNumberID: getEnv("ELEVENLABS_PHONE_NUMBER_ID", ""),
			WebhookSecret: getEnv("ELEVENLABS_WEBHOOK_SECRET", ""),
			Timeout:       getEnvAsDuration("ELEVENLABS_TIMEOUT", "60s"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "campaign_analysis"),
			Timeout:   getEnvAsDuration("CLOUDINARY_TIMEOUT", "60s"),
		},
		Schedule: ScheduleConfig{
			Timezone: getEnv("DEFAULT_TIMEZONE", "Asia/Kolkata"),
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
