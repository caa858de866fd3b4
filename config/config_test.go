package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE", "LISTING_STORE", "BASE_URL", "DIALING_CODE"} {
		t.Setenv(k, "")
	}

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ApiPort != "8080" || c.Database != "sqlite3" || c.ListingStore != STORE_GORM {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Bot.BaseURL != DefaultBaseURL || c.Bot.DialingCode != "27" {
		t.Errorf("bot defaults = %+v", c.Bot)
	}
	if c.Bot.RateLimit != 5 || c.Bot.RateWindow != 60 {
		t.Errorf("rate defaults = %d/%d; want 5/60", c.Bot.RateLimit, c.Bot.RateWindow)
	}
}

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(jsonPath, []byte(`{"api_port":"9000","bot":{"base_url":"https://example.org/market/"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("api_port: \"9100\"\nlisting_store: supabase\nbot:\n  rate_limit: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	if c.ApiPort != "9000" || c.Bot.BaseURL != "https://example.org/market" {
		t.Errorf("json config = %+v", c)
	}

	c, err = Load(yamlPath)
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}
	if c.ApiPort != "9100" || c.ListingStore != STORE_SUPABASE || c.Bot.RateLimit != 3 {
		t.Errorf("yaml config = %+v", c)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("POC_NO_WHATSAPP", "true")
	t.Setenv("DIALING_CODE", "55")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	c, err := Load("missing.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ApiPort != "7070" || !c.WhatsApp.DryRun || c.Bot.DialingCode != "55" || c.OpenAI.ApiKey != "sk-env" {
		t.Errorf("env overrides not applied: %+v", c)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
