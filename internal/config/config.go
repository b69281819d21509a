package config

import (
	"errors"
	"os"
	"strings"
)

const (
	defaultPort          = "8080"
	defaultVoiceBaseURL  = "https://api.vapi.ai"
	defaultLLMURL        = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel      = "llama3-70b-8192"
	defaultLogPath       = "call_logs.json"
	defaultLogBackend    = "file"
	defaultAllowedDomain = "@gmail.com"
)

// Config holds service configuration derived from environment
// variables. godotenv is applied in main before FromEnv runs.
type Config struct {
	Port string

	VoiceAPIKey   string
	VoiceBaseURL  string
	AssistantID   string
	PhoneNumberID string

	LLMAPIKey string
	LLMURL    string
	LLMModel  string

	CallLogPath    string
	CallLogBackend string // "file" or "sqlite"

	AllowedEmailDomain string
}

func FromEnv() Config {
	return Config{
		Port:               envOr("PORT", defaultPort),
		VoiceAPIKey:        os.Getenv("VAPI_API_KEY"),
		VoiceBaseURL:       envOr("VAPI_BASE_URL", defaultVoiceBaseURL),
		AssistantID:        os.Getenv("ASSISTANT_ID"),
		PhoneNumberID:      os.Getenv("PHONE_NUMBER_ID"),
		LLMAPIKey:          os.Getenv("LLM_API_KEY"),
		LLMURL:             envOr("LLM_GATEWAY_URL", defaultLLMURL),
		LLMModel:           envOr("LLM_MODEL", defaultLLMModel),
		CallLogPath:        envOr("CALL_LOG_PATH", defaultLogPath),
		CallLogBackend:     strings.ToLower(envOr("CALL_LOG_BACKEND", defaultLogBackend)),
		AllowedEmailDomain: envOr("ALLOWED_EMAIL_DOMAIN", defaultAllowedDomain),
	}
}

func (c Config) Validate() error {
	if c.VoiceAPIKey == "" {
		return errors.New("VAPI_API_KEY not set")
	}
	if c.AssistantID == "" {
		return errors.New("ASSISTANT_ID not set")
	}
	if c.PhoneNumberID == "" {
		return errors.New("PHONE_NUMBER_ID not set")
	}
	if c.LLMAPIKey == "" {
		return errors.New("LLM_API_KEY not set")
	}
	if c.CallLogBackend != "file" && c.CallLogBackend != "sqlite" {
		return errors.New("CALL_LOG_BACKEND must be file or sqlite")
	}
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
