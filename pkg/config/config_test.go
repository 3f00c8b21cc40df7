package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
postgres:
  host: localhost
  database: fundval
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d", cfg.Server.Port)
	}
	if cfg.ExchangeRate.MaxAge != 24*time.Hour {
		t.Fatalf("default rate max age = %v", cfg.ExchangeRate.MaxAge)
	}
	if cfg.QuoteCache.Backend != "memory" {
		t.Fatalf("default cache backend = %s", cfg.QuoteCache.Backend)
	}
	if cfg.AlphaVantage.RequestsPerMinute != 5 {
		t.Fatalf("default rpm = %d", cfg.AlphaVantage.RequestsPerMinute)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing environment": `
postgres:
  host: localhost
  database: fundval
`,
		"missing postgres host": `
environment: test
postgres:
  database: fundval
`,
		"bad cache backend": `
environment: test
postgres:
  host: localhost
  database: fundval
quote_cache:
  backend: memcached
`,
		"brokers without topic": `
environment: test
postgres:
  host: localhost
  database: fundval
kafka:
  brokers: ["localhost:9092"]
`,
	}

	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: test
postgres:
  host: localhost
  database: fundval
kafka:
  filings_topic: filings.observed
`)

	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-key")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.AlphaVantage.APIKey != "av-key" {
		t.Fatalf("api key override missing")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b2:9092" {
		t.Fatalf("broker override = %v", cfg.Kafka.Brokers)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port override = %d", cfg.Server.Port)
	}
}
