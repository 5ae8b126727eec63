package config

import (
	"context"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreMongo || cfg.Mongo.Database != "catalog" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 8*time.Hour || cfg.Auth.BcryptCost != 10 {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.DefaultRole != "user" || cfg.Auth.AdminRole != "admin" || cfg.Auth.RevocationEnabled {
		t.Fatalf("unexpected role defaults: %+v", cfg.Auth)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development profile by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ENV", "production")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreDriver != StoreMemory || cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.IsDevelopment() {
		t.Fatal("production must not be development")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown store", map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "sqlite"}},
		{"non-positive ttl", map[string]string{"JWT_SECRET": "x", "TOKEN_TTL": "0s"}},
		{"same roles", map[string]string{"JWT_SECRET": "x", "DEFAULT_ROLE": "admin"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
