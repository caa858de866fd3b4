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

const defaultOpenAIURL = "https://api.openai.com/v1/responses"

// OpenAIClient calls the OpenAI Responses API. Its Complete method matches
// extractor.InferFunc, so it plugs straight into listing extraction.
type OpenAIClient struct {
	ApiKey       string
	Model        string // e.g. gpt-4.1-mini
	Instructions string // optional system prompt
	URL          string // defaults to the public Responses endpoint
	HTTPClient   *http.Client
}

// NewOpenAIClient returns a client with a 30s HTTP timeout.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		ApiKey:     strings.TrimSpace(apiKey),
		Model:      model,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether calls can be made at all.
func (c *OpenAIClient) Configured() bool {
	return c != nil && strings.TrimSpace(c.ApiKey) != ""
}

// Complete sends prompt as the model input and returns the assistant text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}
	model := strings.TrimSpace(c.Model)
	if model == "" {
		model = "gpt-4.1-mini"
	}
	url := strings.TrimSpace(c.URL)
	if url == "" {
		url = defaultOpenAIURL
	}

	reqBody := map[string]any{
		"model": model,
		"input": prompt,
	}
	if strings.TrimSpace(c.Instructions) != "" {
		reqBody["instructions"] = c.Instructions
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Output []struct {
			Type    string `json:"type"`
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}

	var sb strings.Builder
	for _, item := range parsed.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" && strings.TrimSpace(content.Text) != "" {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(content.Text)
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("empty response from model (no output_text items found)")
	}
	return out, nil
}
