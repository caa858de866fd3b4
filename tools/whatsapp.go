package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGraphURL = "https://graph.facebook.com"

// WhatsAppAPIError is returned for non-2xx Graph API responses.
type WhatsAppAPIError struct {
	StatusCode int
	Body       string
}

func (e WhatsAppAPIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Retryable reports whether a later attempt may succeed.
func (e WhatsAppAPIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// WhatsAppClient is a thin client for the WhatsApp Cloud API.
type WhatsAppClient struct {
	AccessToken   string
	ApiVersion    string // e.g. v24.0
	PhoneNumberID string
	WabaID        string // business account, only needed for SubscribeApp
	BaseURL       string // defaults to graph.facebook.com
	HTTPClient    *http.Client
}

func (c WhatsAppClient) post(ctx context.Context, path string, body any) error {
	if strings.TrimSpace(c.PhoneNumberID) == "" {
		return fmt.Errorf("WHATSAPP_ACCESS_TOKEN or WHATSAPP_PHONE_NUMBER_ID not set")
	}
	return c.graphPost(ctx, c.PhoneNumberID, path, body)
}

// graphPost posts body to /{version}/{node}/{path} on the Graph API.
func (c WhatsAppClient) graphPost(ctx context.Context, node, path string, body any) error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return fmt.Errorf("WHATSAPP_ACCESS_TOKEN not set")
	}
	apiVersion := strings.TrimSpace(c.ApiVersion)
	if apiVersion == "" {
		apiVersion = "v24.0"
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultGraphURL
	}
	url := fmt.Sprintf("%s/%s/%s/%s", base, apiVersion, strings.TrimSpace(node), strings.TrimPrefix(path, "/"))

	var b []byte
	if body != nil {
		var err error
		if b, err = json.Marshal(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.AccessToken))
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return WhatsAppAPIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

// SendText sends a plain text message to a WhatsApp number (digits only).
func (c WhatsAppClient) SendText(ctx context.Context, to string, text string) error {
	return c.post(ctx, "messages", map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]any{
			"body": text,
		},
	})
}
