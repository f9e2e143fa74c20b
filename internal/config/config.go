package config

import (
	"os"
	"strings"
)

type Config struct {
	Port            string
	UpstreamBaseURL string
	JWTSecret       string
	DatabaseURL     string
	AllowedOrigins  []string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8082"),
		UpstreamBaseURL: NormalizeBaseURL(getEnv("UPSTREAM_BASE_URL", "https://backend-three-omega-76.vercel.app/api")),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AllowedOrigins:  splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}
}

// NormalizeBaseURL accepts either a bare host or a ".../api" URL and
// normalizes to the "/api" form the upstream routes hang off.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(raw, "/")
	if strings.HasSuffix(strings.ToLower(u), "/api") {
		return u
	}
	return u + "/api"
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
