package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClientComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":[
			{"type":"reasoning","role":"","content":[]},
			{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"title\":\"Bike\"}"}]}
		]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "gpt-test")
	c.URL = srv.URL

	out, err := c.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"title":"Bike"}` {
		t.Errorf("Complete = %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["model"] != "gpt-test" || gotBody["input"] != "hello" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestOpenAIClientErrors(t *testing.T) {
	if _, err := (&OpenAIClient{}).Complete(context.Background(), "x"); err == nil {
		t.Error("expected error without api key")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "")
	c.URL = srv.URL
	_, err := c.Complete(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected 429 error, got %v", err)
	}
}

func TestWhatsAppClientSendText(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := WhatsAppClient{AccessToken: "tok", PhoneNumberID: "123", ApiVersion: "v20.0", BaseURL: srv.URL}
	if err := c.SendText(context.Background(), "27828868631", "hi"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if gotPath != "/v20.0/123/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["to"] != "27828868631" || gotBody["type"] != "text" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestWhatsAppClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad number", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := WhatsAppClient{AccessToken: "tok", PhoneNumberID: "123", BaseURL: srv.URL}
	err := c.SendText(context.Background(), "27", "hi")

	var apiErr WhatsAppAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected WhatsAppAPIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Retryable() {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	r := RetryConfig{MaxAttempts: 3}
	err := r.Do(context.Background(), "op", func() error {
		calls++
		if calls < 2 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("err=%v calls=%d; want nil, 2", err, calls)
	}
}

func TestRetryGivesUpOnClientError(t *testing.T) {
	calls := 0
	r := RetryConfig{MaxAttempts: 3}
	err := r.Do(context.Background(), "op", func() error {
		calls++
		return WhatsAppAPIError{StatusCode: http.StatusBadRequest}
	})
	if err == nil || calls != 1 {
		t.Errorf("err=%v calls=%d; want error after 1 call", err, calls)
	}
}

func TestRetryExhausts(t *testing.T) {
	calls := 0
	r := RetryConfig{MaxAttempts: 3}
	err := r.Do(context.Background(), "op", func() error {
		calls++
		return WhatsAppAPIError{StatusCode: http.StatusBadGateway}
	})
	if err == nil || calls != 3 {
		t.Errorf("err=%v calls=%d; want error after 3 calls", err, calls)
	}
}

func TestWhatsAppSetupCalls(t *testing.T) {
	var paths []string
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := WhatsAppClient{AccessToken: "tok", PhoneNumberID: "123", WabaID: "999", BaseURL: srv.URL}
	ctx := context.Background()
	if err := c.RequestCode(ctx, "voice", ""); err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if err := c.Register(ctx, "123456"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.SubscribeApp(ctx); err != nil {
		t.Fatalf("SubscribeApp: %v", err)
	}

	want := []string{"/v24.0/123/request_code", "/v24.0/123/register", "/v24.0/999/subscribed_apps"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("call %d path = %q; want %q", i, paths[i], p)
		}
	}
	if bodies[0]["code_method"] != "VOICE" || bodies[0]["language"] != "en_US" {
		t.Errorf("request_code body = %v", bodies[0])
	}

	if err := c.Register(ctx, "12"); err == nil {
		t.Error("short pin should fail")
	}
	if err := (WhatsAppClient{AccessToken: "tok"}).SubscribeApp(ctx); err == nil {
		t.Error("missing waba id should fail")
	}
}
