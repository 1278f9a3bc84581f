package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all storefront configuration
type Config struct {
	API       APIConfig
	Addresses AddressConfig
	Waitlist  WaitlistConfig
	Cart      CartConfig
}

type APIConfig struct {
	BaseURL string        // drop/payment backend, e.g. "http://localhost:3030"
	Timeout time.Duration // per-request timeout applied to every call
}

type AddressConfig struct {
	BaseURL string // provinces.open-api.vn root
}

type WaitlistConfig struct {
	// FormURL is the Google Form formResponse endpoint. Empty means the
	// waitlist runs in simulated mode (accepted locally, nothing sent).
	FormURL    string
	EmailEntry string // form entry id for the email field, e.g. "entry.123456"
	PhoneEntry string // form entry id for the phone field (optional)
}

type CartConfig struct {
	DBPath string
}

// Load returns storefront configuration from environment variables
func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: getEnv("STOREFRONT_API_URL", "http://localhost:3030"),
			Timeout: time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Addresses: AddressConfig{
			BaseURL: getEnv("PROVINCES_API_URL", "https://provinces.open-api.vn/api"),
		},
		Waitlist: WaitlistConfig{
			FormURL:    getEnv("GOOGLE_FORM_URL", ""),
			EmailEntry: getEnv("GOOGLE_FORM_EMAIL_ENTRY", ""),
			PhoneEntry: getEnv("GOOGLE_FORM_PHONE_ENTRY", ""),
		},
		Cart: CartConfig{
			DBPath: getEnv("CART_DB_PATH", "storefront-cart.db"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
