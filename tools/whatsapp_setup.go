package tools

import (
	"context"
	"fmt"
	"strings"
)

// Phone number onboarding calls, used once from the command line when the
// bot number is moved to the Cloud API.

// RequestCode asks Meta to send a verification code by SMS or VOICE.
func (c WhatsAppClient) RequestCode(ctx context.Context, method string, language string) error {
	if strings.TrimSpace(method) == "" {
		method = "SMS"
	}
	if strings.TrimSpace(language) == "" {
		language = "en_US"
	}
	return c.post(ctx, "request_code", map[string]any{
		"code_method": strings.ToUpper(method),
		"language":    language,
	})
}

// Register registers the phone number with the two-step verification PIN.
func (c WhatsAppClient) Register(ctx context.Context, pin string) error {
	if len(strings.TrimSpace(pin)) != 6 {
		return fmt.Errorf("pin must have 6 digits")
	}
	return c.post(ctx, "register", map[string]any{
		"messaging_product": "whatsapp",
		"pin":               strings.TrimSpace(pin),
	})
}

// SubscribeApp subscribes the app to webhook updates of the business account.
func (c WhatsAppClient) SubscribeApp(ctx context.Context) error {
	if strings.TrimSpace(c.WabaID) == "" {
		return fmt.Errorf("WHATSAPP_WABA_ID not set")
	}
	return c.graphPost(ctx, c.WabaID, "subscribed_apps", nil)
}
