package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.News.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", cfg.News.PageSize)
	}
	if cfg.AI.MaxTokens != 150 || cfg.AI.Temperature != 0.7 {
		t.Fatalf("unexpected AI defaults: %+v", cfg.AI)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	noSources := Default()
	noSources.News.Sources = nil
	if err := noSources.Validate(); err == nil {
		t.Fatal("expected error for empty sources")
	}

	badDriver := Default()
	badDriver.Storage.Driver = "mongo"
	if err := badDriver.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}

	badPage := Default()
	badPage.News.PageSize = 0
	if err := badPage.Validate(); err == nil {
		t.Fatal("expected error for zero page size")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"NEWS_API_KEY":              "news-key",
		"ANTHROPIC_API_KEY":         "anthropic-key",
		"SUPABASE_URL":              "https://project.example",
		"SUPABASE_SERVICE_ROLE_KEY": "service-key",
		"TELEGRAM_CHAT_ID":          "42",
	}

	cfg := Default()
	cfg.applyEnvOverrides(func(k string) string { return env[k] })

	if cfg.News.APIKey != "news-key" {
		t.Fatalf("news key not applied: %q", cfg.News.APIKey)
	}
	if cfg.AI.Anthropic.APIKey != "anthropic-key" || cfg.AI.OpenAI.APIKey != "" {
		t.Fatalf("provider keys not applied correctly: %+v", cfg.AI)
	}
	if cfg.Storage.Driver != DriverREST {
		t.Fatalf("expected rest driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.URL != "https://project.example" || cfg.Storage.ServiceKey != "service-key" {
		t.Fatalf("store credentials not applied: %+v", cfg.Storage)
	}
	if cfg.Notifications.Telegram.ChatID != "42" {
		t.Fatalf("telegram chat id not applied")
	}
}

func TestApplyEnvOverridesPostgresDSN(t *testing.T) {
	t.Parallel()

	env := map[string]string{"DATABASE_DSN": "postgres://u:p@db:5432/news"}
	cfg := Default()
	cfg.applyEnvOverrides(func(k string) string { return env[k] })

	if cfg.Storage.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != env["DATABASE_DSN"] {
		t.Fatalf("dsn not applied: %q", cfg.Storage.DSN)
	}
}

func TestLoadMergesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
logging:
  level: warn
news:
  pageSize: 5
  sources:
    - id: the-guardian
scheduler:
  interval: 30m
ai:
  concurrency: 2
storage:
  table: articles_test
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("NEWS_API_KEY", "from-env")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("STORE_URL", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Fatalf("level not merged: %q", cfg.Logging.Level)
	}
	if cfg.News.PageSize != 5 || len(cfg.News.Sources) != 1 || cfg.News.Sources[0].ID != "the-guardian" {
		t.Fatalf("news not merged: %+v", cfg.News)
	}
	if cfg.News.Endpoint != defaultNewsAPIURL {
		t.Fatalf("default endpoint lost: %q", cfg.News.Endpoint)
	}
	if cfg.Scheduler.Interval != 30*time.Minute {
		t.Fatalf("interval not parsed: %v", cfg.Scheduler.Interval)
	}
	if cfg.AI.Concurrency != 2 || cfg.AI.MaxTokens != 150 {
		t.Fatalf("ai not merged: %+v", cfg.AI)
	}
	if cfg.Storage.Table != "articles_test" || cfg.Storage.Driver != DriverSQLite {
		t.Fatalf("storage not merged: %+v", cfg.Storage)
	}
	if cfg.News.APIKey != "from-env" {
		t.Fatalf("env override not applied: %q", cfg.News.APIKey)
	}
}

func TestLoadExplicitZeroValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		return path
	}

	cfg, err := Load(write("zero.yaml", "ai:\n  temperature: 0\n  requestsPerSecond: 0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Temperature != 0 || cfg.AI.RequestsPerSecond != 0 {
		t.Fatalf("explicit zeros not applied: %+v", cfg.AI)
	}

	cfg, err = Load(write("rate.yaml", "ai:\n  requestsPerSecond: 2.5\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.RequestsPerSecond != 2.5 || cfg.AI.Temperature != 0.7 {
		t.Fatalf("unset temperature should keep its default: %+v", cfg.AI)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
