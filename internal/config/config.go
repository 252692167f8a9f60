// Package config loads the application configuration from the
// environment.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config holds every runtime knob. All fields have defaults; the
// Telegram and Gemini integrations stay disabled while their tokens are
// empty.
type Config struct {
	DatabasePath    string `env:"MEALDESK_DB_PATH,default=data/mealdesk.db"`
	FoodCatalogPath string `env:"MEALDESK_FOOD_CATALOG,default=data/foods.json"`
	LogLevel        string `env:"MEALDESK_LOG_LEVEL,default=info"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,default="`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,default="`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID,default=0"`
}

// NewFromEnv decodes the configuration from environment variables.
func NewFromEnv() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}
