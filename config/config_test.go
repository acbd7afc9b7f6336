package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	raw := `
logsentry:
  db:
    path: /var/lib/logsentry/events.db
  input:
    mode: udp
    envelope_marker: localhost
    udp:
      addr: "0.0.0.0:5514"
      read_buffer: 8192
  rules:
    interval: 15s
    cooldown: 5m
    brute_force:
      window: 10m
      threshold: 3
    off_hours:
      start: 8
      end: 20
    domains:
      recent: 50
      indicators:
        evil-tracker: "known tracking domain"
  api:
    addr: ":9090"
  logging:
    enabled: true
    level: debug
    console: true
`
	path := filepath.Join(t.TempDir(), "logsentry.yml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	ls := cfg.LogSentry
	if ls.DB.Path != "/var/lib/logsentry/events.db" {
		t.Fatalf("unexpected db path: %q", ls.DB.Path)
	}
	if ls.Input.UDP.Addr != "0.0.0.0:5514" || ls.Input.UDP.ReadBuffer != 8192 {
		t.Fatalf("unexpected udp config: %+v", ls.Input.UDP)
	}
	if ls.Rules.Interval != 15*time.Second || ls.Rules.Cooldown != 5*time.Minute {
		t.Fatalf("unexpected cadence: %+v", ls.Rules)
	}
	if ls.Rules.BruteForce.Threshold != 3 || ls.Rules.BruteForce.Window != 10*time.Minute {
		t.Fatalf("unexpected brute force config: %+v", ls.Rules.BruteForce)
	}
	if ls.Rules.Domains.Indicators["evil-tracker"] != "known tracking domain" {
		t.Fatalf("unexpected indicators: %v", ls.Rules.Domains.Indicators)
	}
	if ls.API.Addr != ":9090" {
		t.Fatalf("unexpected api addr: %q", ls.API.Addr)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
