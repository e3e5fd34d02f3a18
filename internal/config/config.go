package config

import (
	"errors"
	"os"
	"strings"
)

// Config holds every environment-driven setting the API needs.
type Config struct {
	Port   string
	AppEnv string

	// Supabase project settings. The key is the service role key so the
	// API can write to storage buckets; row access is always scoped by
	// the authenticated user's ID on top of the project's RLS policies.
	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string

	// Storage buckets. CardBucket is the primary target for generated
	// cards, ScreenshotBucket holds uploaded screenshots and doubles as
	// the fallback card target under the cards/ prefix.
	CardBucket       string
	ScreenshotBucket string

	// Portfolio repo list settings.
	GitHubUsername  string
	GitHubToken     string
	RepoRefreshSpec string

	// SiteURL is the public page URL used for the markdown deep link.
	SiteURL string

	AllowedOrigins []string
	BypassAuth     bool
}

// Load reads the configuration from environment variables.
// godotenv is loaded by main before this is called.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              envOrDefault("PORT", "8080"),
		AppEnv:            envOrDefault("APP_ENV", "development"),
		SupabaseURL:       strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:       os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		CardBucket:        envOrDefault("CARD_BUCKET", "contrib-cards"),
		ScreenshotBucket:  envOrDefault("SCREENSHOT_BUCKET", "contrib-screens"),
		GitHubUsername:    os.Getenv("GITHUB_USERNAME"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		RepoRefreshSpec:   envOrDefault("REPO_REFRESH_CRON", "@every 30m"),
		SiteURL:           envOrDefault("SITE_URL", "https://xaytheon.dev"),
		BypassAuth:        os.Getenv("BYPASS_AUTH") == "true",
	}

	origins := envOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, errors.New("missing SUPABASE_URL or SUPABASE_SERVICE_KEY")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
