package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Auth holds the identity provider settings.
type Auth struct {
	Domain       string   `yaml:"domain"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Audience     string   `yaml:"audience"`
	Scopes       []string `yaml:"scopes"`
	// Token is a pre-issued bearer token, used when no client secret is configured.
	Token string `yaml:"token"`
}

// Frontend captures the ticket frontend configuration.
type Frontend struct {
	Addr       string        `yaml:"addr"`
	APIBaseURL string        `yaml:"api_base_url"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	Auth       Auth          `yaml:"auth"`
}

// Backend captures the development backend configuration.
type Backend struct {
	Addr      string `yaml:"addr"`
	PublicURL string `yaml:"public_url"`
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

// DefaultFrontend returns the settings used when nothing else is configured.
func DefaultFrontend() Frontend {
	return Frontend{
		Addr:       ":4200",
		APIBaseURL: "http://localhost:8000",
		SessionTTL: time.Hour,
		Auth: Auth{
			Scopes: []string{"openid", "profile", "email"},
		},
	}
}

// DefaultBackend returns the development backend defaults.
func DefaultBackend() Backend {
	return Backend{
		Addr:      ":8000",
		PublicURL: "http://localhost:8000",
		// Use a default for development - override it anywhere else
		JWTSecret: "dev-secret-key-change-in-production",
		Issuer:    "loto-dev",
		Audience:  "loto-api",
	}
}

// LoadFrontend reads the YAML file at path (if any) over the defaults, then applies LOTO_* environment overrides.
func LoadFrontend(path string) (Frontend, error) {
	cfg := DefaultFrontend()
	if err := readYAML(path, &cfg); err != nil {
		return cfg, err
	}

	setString(&cfg.Addr, "LOTO_ADDR")
	setString(&cfg.APIBaseURL, "LOTO_API_BASE_URL")
	setString(&cfg.Auth.Domain, "LOTO_AUTH_DOMAIN")
	setString(&cfg.Auth.ClientID, "LOTO_AUTH_CLIENT_ID")
	setString(&cfg.Auth.ClientSecret, "LOTO_AUTH_CLIENT_SECRET")
	setString(&cfg.Auth.Audience, "LOTO_AUTH_AUDIENCE")
	setString(&cfg.Auth.Token, "LOTO_API_TOKEN")
	if v := os.Getenv("LOTO_AUTH_SCOPES"); v != "" {
		cfg.Auth.Scopes = strings.Fields(v)
	}
	if v := os.Getenv("LOTO_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("LOTO_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings the frontend cannot start without.
func (c Frontend) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api base url is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Auth.ClientSecret != "" && (c.Auth.Domain == "" || c.Auth.ClientID == "") {
		return errors.New("auth domain and client id are required with a client secret")
	}
	return nil
}

// LoadBackend reads the development backend settings the same way as LoadFrontend.
func LoadBackend(path string) (Backend, error) {
	cfg := DefaultBackend()
	if err := readYAML(path, &cfg); err != nil {
		return cfg, err
	}

	setString(&cfg.Addr, "LOTO_BACKEND_ADDR")
	setString(&cfg.PublicURL, "LOTO_BACKEND_PUBLIC_URL")
	setString(&cfg.JWTSecret, "LOTO_JWT_SECRET")
	setString(&cfg.Issuer, "LOTO_JWT_ISSUER")
	setString(&cfg.Audience, "LOTO_AUTH_AUDIENCE")

	if cfg.JWTSecret == "" {
		return cfg, errors.New("jwt secret is required")
	}
	return cfg, nil
}

func readYAML(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
