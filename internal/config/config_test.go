package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"JWT_SECRET": "0123456789abcdef0123456789abcdef",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Storage != StoragePostgres {
		t.Errorf("Storage = %q", cfg.Storage)
	}
	if cfg.JWT.AccessTTL != 24*time.Hour {
		t.Errorf("AccessTTL = %v", cfg.JWT.AccessTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Seed.AdminEmail != "admin@school.com" {
		t.Errorf("AdminEmail = %q", cfg.Seed.AdminEmail)
	}
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]interface{}
		wantErr   bool
	}{
		{
			name:      "short secret",
			overrides: map[string]interface{}{"JWT_SECRET": "short"},
			wantErr:   true,
		},
		{
			name:      "unknown storage",
			overrides: map[string]interface{}{"JWT_SECRET": "0123456789abcdef0123456789abcdef", "STORAGE": "mongo"},
			wantErr:   true,
		},
		{
			name:      "memory storage without database",
			overrides: map[string]interface{}{"JWT_SECRET": "0123456789abcdef0123456789abcdef", "STORAGE": "memory", "DATABASE_URL": ""},
		},
		{
			name: "brokers list",
			overrides: map[string]interface{}{
				"JWT_SECRET":    "0123456789abcdef0123456789abcdef",
				"KAFKA_BROKERS": "kafka-1:9092, kafka-2:9092",
				"LOG_LEVEL":     "debug",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newTestViper(tt.overrides))
			if (err != nil) != tt.wantErr {
				t.Errorf("fromViper() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("splitList = %v", got)
	}
}
