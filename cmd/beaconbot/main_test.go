package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"beaconmarket/tools"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATABASE", "sqlite3")
	t.Setenv("DB_PATH", filepath.Join(dir, "bot.db"))
	t.Setenv("LISTING_STORE", "gorm")
	t.Setenv("BASE_URL", "https://example.test")
	return filepath.Join(dir, "missing.json")
}

func TestRunSingleMessage(t *testing.T) {
	configPath := setupEnv(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"HELP"}, "Browse all: https://example.test"},
		{[]string{"LIST:", "Mountain", "bike", "R200", "per", "day"}, "Listing Created"},
		{[]string{"hello there"}, noResponse},
		{[]string{"hi"}, noResponse},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		args := append([]string{"--config", configPath, "--sender", "0821234567"}, tt.args...)
		if err := run(context.Background(), args, strings.NewReader(""), &out); err != nil {
			t.Fatalf("run(%q) error: %v", tt.args, err)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("run(%q) = %q; want it to contain %q", tt.args, out.String(), tt.want)
		}
	}
}

func TestRunListingsPersistBetweenRuns(t *testing.T) {
	configPath := setupEnv(t)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"--config", configPath, "LIST: Kayak R150 per day"}, nil, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	out.Reset()
	if err := run(context.Background(), []string{"--config", configPath, "SOLD"}, nil, &out); err != nil {
		t.Fatalf("sold: %v", err)
	}
	if !strings.Contains(out.String(), "Kayak") {
		t.Errorf("sold reply = %q", out.String())
	}
}

func TestRunInteractive(t *testing.T) {
	configPath := setupEnv(t)

	var out bytes.Buffer
	in := strings.NewReader("HELP\nnot a command\nquit\nHELP\n")
	if err := run(context.Background(), []string{"--config", configPath, "-i"}, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if strings.Count(got, "BeaconMarket Commands") != 1 {
		t.Errorf("help printed %d times; want 1 (stops at quit)\n%s", strings.Count(got, "BeaconMarket Commands"), got)
	}
	if !strings.Contains(got, noResponse) {
		t.Errorf("missing %q in %q", noResponse, got)
	}
}

func TestRunMissingMessage(t *testing.T) {
	configPath := setupEnv(t)
	if err := run(context.Background(), []string{"--config", configPath}, nil, io.Discard); err == nil {
		t.Error("expected an error without a message")
	}
}

func TestRunAIWithoutKey(t *testing.T) {
	configPath := setupEnv(t)
	t.Setenv("OPENAI_API_KEY", "")
	if err := run(context.Background(), []string{"--config", configPath, "--ai", "LIST: Kayak R150 per day"}, nil, io.Discard); err == nil {
		t.Error("expected an error for --ai without a key")
	}
}

func TestRunOnboarding(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer srv.Close()

	var out bytes.Buffer
	opts := options{requestCode: "sms", register: "123456"}
	client := whatsappClient(srv.URL)
	if err := onboard(context.Background(), client, opts, &out); err != nil {
		t.Fatalf("onboard: %v", err)
	}
	want := []string{"/v24.0/555/request_code", "/v24.0/555/register"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v; want %v", paths, want)
	}
	if !strings.Contains(out.String(), "phone number registered") {
		t.Errorf("output = %q", out.String())
	}

	opts = options{subscribe: true}
	if err := onboard(context.Background(), client, opts, io.Discard); err == nil {
		t.Error("subscribe without WABA ID should fail")
	}
}

func whatsappClient(baseURL string) tools.WhatsAppClient {
	return tools.WhatsAppClient{
		AccessToken:   "token",
		ApiVersion:    "v24.0",
		PhoneNumberID: "555",
		BaseURL:       baseURL,
	}
}
