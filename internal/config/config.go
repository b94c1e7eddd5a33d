package config

import (
	"os"
	"strconv"
	"time"
)

// AppConfig holds the service configuration loaded from the environment.
type AppConfig struct {
	Port          string
	PublicBaseURL string // externally reachable base URL for webhook callbacks

	// Call-AI provider (Vapi-compatible)
	VapiAPIKey  string
	VapiBaseURL string

	// Telephony provider (Twilio)
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioAPIKeySID    string
	TwilioAPIKeySecret string
	TwiMLAppSID        string

	// Summarizer
	OpenAIAPIKey  string
	OpenAIBaseURL string
	SummaryModel  string

	// Push notifications
	FirebaseCredentialsFile string

	// MMS attachment storage
	MediaBucket string

	// Optional Redis (cross-instance transcript buffer + summary dedup)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UpstreamTimeout time.Duration
}

// LoadFromEnv builds an AppConfig from environment variables with sane
// local-development defaults.
func LoadFromEnv() *AppConfig {
	return &AppConfig{
		Port:          getEnvOrDefault("PORT", "8080"),
		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),

		VapiAPIKey:  getEnvOrDefault("VAPI_API_KEY", ""),
		VapiBaseURL: getEnvOrDefault("VAPI_BASE_URL", "https://api.vapi.ai"),

		TwilioAccountSID:   getEnvOrDefault("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnvOrDefault("TWILIO_AUTH_TOKEN", ""),
		TwilioAPIKeySID:    getEnvOrDefault("TWILIO_API_KEY_SID", ""),
		TwilioAPIKeySecret: getEnvOrDefault("TWILIO_API_KEY_SECRET", ""),
		TwiMLAppSID:        getEnvOrDefault("TWIML_APP_SID", ""),

		OpenAIAPIKey:  getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		SummaryModel:  getEnvOrDefault("SUMMARY_MODEL", "gpt-4o-mini"),

		FirebaseCredentialsFile: getEnvOrDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json"),

		MediaBucket: getEnvOrDefault("MEDIA_BUCKET", ""),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		UpstreamTimeout: time.Duration(getEnvIntOrDefault("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

// DialStatusCallbackURL returns the telephony callback target invoked
// after a Dial attempt, carrying the assistant id for the AI fallback.
func (c *AppConfig) DialStatusCallbackURL(assistantID string) string {
	return c.PublicBaseURL + "/webhook/dial-status?assistantId=" + assistantID
}

// AITakeoverURL returns the call-AI provider endpoint a call is redirected
// to when the human client does not answer.
func (c *AppConfig) AITakeoverURL(assistantID string) string {
	return c.VapiBaseURL + "/twilio/call?assistantId=" + assistantID
}

// VapiWebhookURL is the serverUrl registered on provisioned assistants.
func (c *AppConfig) VapiWebhookURL() string {
	return c.PublicBaseURL + "/webhook/vapi"
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault gets environment variable as int or returns default value
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
