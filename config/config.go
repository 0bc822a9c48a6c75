package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// App holds the configuration loaded at startup
var App *Config

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	// Payment gateway credentials and hosted-payment endpoint
	PayUKey    string
	PayUSalt   string
	PayUAction string

	// ServerBase is this service's public base URL, used to build the
	// surl/furl callback endpoints handed to the gateway.
	ServerBase string
	// ClientURL is the storefront base URL the buyer is redirected back to.
	ClientURL string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),
		PayUKey:    strings.TrimSpace(os.Getenv("PAYU_KEY")),
		PayUSalt:   strings.TrimSpace(os.Getenv("PAYU_SALT")),
		PayUAction: os.Getenv("PAYU_ACTION"),
		ServerBase: strings.TrimRight(os.Getenv("SERVER_BASE"), "/"),
		ClientURL:  strings.TrimRight(os.Getenv("CLIENT_URL"), "/"),
	}

	if config.PayUAction == "" {
		config.PayUAction = "https://test.payu.in/_payment"
	}
	if config.ServerBase == "" {
		config.ServerBase = "http://localhost:8080"
	}
	if config.ClientURL == "" {
		config.ClientURL = "http://localhost:5173"
	}

	// The salt signs every gateway exchange. A missing salt must stop the
	// process at boot, not fail per request.
	if config.PayUKey == "" || config.PayUSalt == "" {
		return nil, fmt.Errorf("PAYU_KEY and PAYU_SALT must be set")
	}

	App = config
	return config, nil
}
