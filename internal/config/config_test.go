package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.Scheduling.CooldownDays != 15 {
		t.Errorf("CooldownDays = %d, want 15", cfg.Scheduling.CooldownDays)
	}
	if cfg.Scheduling.CancelLeadTime != 30*time.Minute {
		t.Errorf("CancelLeadTime = %s", cfg.Scheduling.CancelLeadTime)
	}
	if cfg.Scheduling.ReleaseTime != "09:10" {
		t.Errorf("ReleaseTime = %q", cfg.Scheduling.ReleaseTime)
	}
	if cfg.Jobs.ResetSchedule != "0 0 * * 1" {
		t.Errorf("ResetSchedule = %q", cfg.Jobs.ResetSchedule)
	}

	hours, err := cfg.OpeningHours()
	if err != nil {
		t.Fatalf("opening hours: %v", err)
	}
	if hours.Opening != "08:00" || hours.Closing != "18:00" {
		t.Errorf("hours = %+v", hours)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("COOLDOWN_DAYS", "7")
	t.Setenv("CANCEL_LEAD_TIME", "1h")
	t.Setenv("TELEGRAM_ADMIN_CHATS", "10,20")
	t.Setenv("OPENING_TIME", "7:30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scheduling.CooldownDays != 7 {
		t.Errorf("CooldownDays = %d", cfg.Scheduling.CooldownDays)
	}
	if cfg.Scheduling.CancelLeadTime != time.Hour {
		t.Errorf("CancelLeadTime = %s", cfg.Scheduling.CancelLeadTime)
	}
	if len(cfg.Telegram.AdminChats) != 2 || cfg.Telegram.AdminChats[1] != 20 {
		t.Errorf("AdminChats = %v", cfg.Telegram.AdminChats)
	}
	hours, _ := cfg.OpeningHours()
	if hours.Opening != "07:30" {
		t.Errorf("Opening = %q", hours.Opening)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{"STORAGE": "postgres"}},
		{"unknown storage", map[string]string{"STORAGE": "sqlite"}},
		{"bad timezone", map[string]string{"STORAGE": "memory", "TIMEZONE": "Mars/Olympus"}},
		{"closing before opening", map[string]string{"STORAGE": "memory", "OPENING_TIME": "19:00"}},
		{"bad release time", map[string]string{"STORAGE": "memory", "RELEASE_TIME": "25:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DSN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
