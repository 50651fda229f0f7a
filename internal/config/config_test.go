package config

import (
	"os"
	"path/filepath"
	"testing"

	"courtline/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "courtline"
  environment: "test"
database:
  path: "test.db"
booking:
  max_booking_days: 90
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "courtline" {
		t.Errorf("expected app name courtline, got %s", cfg.App.Name)
	}
	if cfg.Booking.MaxBookingDays != 90 {
		t.Errorf("expected max_booking_days 90, got %d", cfg.Booking.MaxBookingDays)
	}
	// Untouched knobs fall back to defaults.
	if cfg.Booking.TxRetries != models.DefaultTxRetries {
		t.Errorf("expected default tx_retries %d, got %d", models.DefaultTxRetries, cfg.Booking.TxRetries)
	}
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("COURTLINE_DB_PATH", filepath.Join(tmpDir, "env.db"))

	yamlContent := `
database:
  path: "${COURTLINE_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != filepath.Join(tmpDir, "env.db") {
		t.Errorf("env expansion failed, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "redis enabled without address",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Redis:    RedisConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "api auth without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API:      APIConfig{Enabled: true, Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.Port != 8080 {
		t.Errorf("expected default api port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.Booking.MaxBookingDays != models.DefaultMaxBookingDays {
		t.Errorf("expected default max booking days %d, got %d", models.DefaultMaxBookingDays, cfg.Booking.MaxBookingDays)
	}
	if cfg.Booking.RoleCacheTTLSeconds != models.DefaultRoleCacheTTL {
		t.Errorf("expected default role cache ttl %d, got %d", models.DefaultRoleCacheTTL, cfg.Booking.RoleCacheTTLSeconds)
	}
}
