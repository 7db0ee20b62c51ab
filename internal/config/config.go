package config

import (
	"chatnex/internal/logger"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Memory   MemoryConfig
	Chat     ChatConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       []byte
	TokenExpiration time.Duration
}

// LLMConfig holds language-model backend configuration
type LLMConfig struct {
	GeminiAPIKey    string
	Provider        string
	Model           string
	EmbedModel      string
	SystemPrompt    string
	Temperature     float64
	MaxOutputTokens int
	RetryAttempts   int
	RetryDelay      time.Duration
}

// MemoryConfig holds vector-memory configuration
type MemoryConfig struct {
	EmbedDimensions int
	RecallLimit     int
}

// ChatConfig holds conversation pipeline configuration
type ChatConfig struct {
	HistoryWindow int
}

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	config.Server = ServerConfig{
		Port: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	config.Database = DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "postgres"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:     getEnvOrDefault("DB_NAME", "chatnex"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters (current length: %d)", len(jwtSecret))
	}

	config.Auth = AuthConfig{
		JWTSecret:       []byte(jwtSecret),
		TokenExpiration: getEnvAsDuration("JWT_TOKEN_EXPIRATION", 24*time.Hour),
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Log.Warn("GEMINI_API_KEY environment variable not set")
	}

	config.LLM = LLMConfig{
		GeminiAPIKey:    apiKey,
		Provider:        getEnvOrDefault("LLM_PROVIDER", "gemini"),
		Model:           getEnvOrDefault("LLM_MODEL", "gemini-1.5-flash"),
		EmbedModel:      getEnvOrDefault("LLM_EMBED_MODEL", "gemini-embedding-001"),
		SystemPrompt:    getEnvOrDefault("LLM_SYSTEM_PROMPT", getDefaultSystemPrompt()),
		Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		MaxOutputTokens: getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 512),
		RetryAttempts:   getEnvAsInt("LLM_RETRY_ATTEMPTS", 4),
		RetryDelay:      getEnvAsDuration("LLM_RETRY_DELAY", time.Second),
	}

	config.Memory = MemoryConfig{
		EmbedDimensions: getEnvAsInt("MEMORY_EMBED_DIM", 768),
		RecallLimit:     getEnvAsInt("MEMORY_RECALL_LIMIT", 3),
	}

	config.Chat = ChatConfig{
		HistoryWindow: getEnvAsInt("CHAT_HISTORY_WINDOW", 15),
	}

	return config, nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid duration value, using default")
		return defaultValue
	}
	return value
}

func getDefaultSystemPrompt() string {
	return `You are ChatNex, an intelligent, empathetic and friendly AI assistant.

Always respond in a clear, concise and polite manner, making your answers natural, supportive and pleasing to read. Be helpful and encouraging, keeping the tone professional yet warm.

- For technical help, explain step by step
- For casual chat, be friendly and conversational
- Never be rude, robotic or dismissive
- Use emojis sparingly and only when they add value`
}
