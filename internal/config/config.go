package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	QueryAPIBaseURL string
	QueryAPIToken   string
	GraderBaseURL   string
	CDNBaseURL      string
	RedisURL        string
	JWTSecret       string
	TokenTTL        time.Duration
	CacheTTL        time.Duration
	AIProvider      string
	OpenAIAPIKey    string
	OpenAIModel     string
	NATSURL         string
	NATSSubject     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COACHDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CoachDesk API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("ai.provider", "remote")
	v.SetDefault("nats.subject", "coachdesk.grading.saved")

	ttl, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		QueryAPIBaseURL: v.GetString("queryapi.base_url"),
		QueryAPIToken:   v.GetString("queryapi.token"),
		GraderBaseURL:   v.GetString("grader.base_url"),
		CDNBaseURL:      v.GetString("cdn.base_url"),
		RedisURL:        v.GetString("redis.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		TokenTTL:        tokenTTL,
		CacheTTL:        ttl,
		AIProvider:      strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		OpenAIModel:     v.GetString("openai_model"),
		NATSURL:         v.GetString("nats.url"),
		NATSSubject:     v.GetString("nats.subject"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.QueryAPIBaseURL == "" {
		return Config{}, fmt.Errorf("query api base url must be provided")
	}

	if cfg.GraderBaseURL == "" {
		return Config{}, fmt.Errorf("grader base url must be provided")
	}

	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("openai api key must be provided for the openai provider")
	}

	return cfg, nil
}
