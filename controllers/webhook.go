package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	dbpkg "beaconmarket/db"
	"beaconmarket/models"
	"beaconmarket/tools"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []struct {
					From string `json:"from"`
					ID   string `json:"id"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type IncomingTextMessage struct {
	From string
	Name string // WhatsApp profile name, when Meta sends it
	ID   string
	Text string
}

func extractTextMessages(payload WebhookPayload) []IncomingTextMessage {
	var out []IncomingTextMessage

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if strings.TrimSpace(change.Field) != "messages" {
				continue
			}

			names := map[string]string{}
			for _, contact := range change.Value.Contacts {
				names[strings.TrimSpace(contact.WaID)] = strings.TrimSpace(contact.Profile.Name)
			}

			for _, m := range change.Value.Messages {
				if strings.ToLower(strings.TrimSpace(m.Type)) != "text" {
					continue
				}
				body := strings.TrimSpace(m.Text.Body)
				if body == "" {
					continue
				}
				from := strings.TrimSpace(m.From)
				out = append(out, IncomingTextMessage{
					From: from,
					Name: names[from],
					ID:   strings.TrimSpace(m.ID),
					Text: body,
				})
			}
		}
	}

	return out
}

// verifyMetaSignature validates the request body against Meta's
// X-Hub-Signature-256 header (sha256=<hex>) using the app secret.
func verifyMetaSignature(secret, header string, rawBody []byte) (bool, string) {
	sig := strings.TrimSpace(header)
	if sig == "" {
		return false, "missing X-Hub-Signature-256"
	}
	if !strings.HasPrefix(sig, "sha256=") {
		return false, "invalid X-Hub-Signature-256 format"
	}

	provided, err := hex.DecodeString(strings.TrimPrefix(sig, "sha256="))
	if err != nil {
		return false, "invalid signature hex"
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(rawBody)
	expected := mac.Sum(nil)

	if !hmac.Equal(provided, expected) {
		return false, "signature mismatch"
	}

	return true, ""
}

// GET /api/webhook
func WebhookVerify(c *gin.Context) {
	verifyToken := conf.WhatsApp.VerifyToken
	if verifyToken == "" {
		RespondError(c, "WEBHOOK_VERIFY_TOKEN not set", http.StatusInternalServerError)
		return
	}

	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	tokenOK := subtle.ConstantTimeCompare([]byte(token), []byte(verifyToken)) == 1
	log.Printf("webhook: verify mode=%s token_ok=%v", mode, tokenOK)

	if mode == "subscribe" && tokenOK && challenge != "" {
		c.String(http.StatusOK, "%s", challenge)
		return
	}

	RespondError(c, "forbidden", http.StatusForbidden)
}

// POST /api/webhook
func WebhookUpdate(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	// Read raw body once so we can validate Meta signature.
	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, "failed to read body", http.StatusBadRequest)
		return
	}

	if secret := conf.WhatsApp.AppSecret; secret != "" {
		if ok, reason := verifyMetaSignature(secret, c.GetHeader("X-Hub-Signature-256"), raw); !ok {
			RespondError(c, "forbidden: "+reason, http.StatusForbidden)
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}

	msgs := extractTextMessages(payload)

	// answer Meta fast, the events worker sends the replies
	c.String(http.StatusOK, "EVENT_RECEIVED")

	for _, m := range msgs {
		if err := storeEvent(db, m); err != nil {
			log.Printf("webhook: store event %s: %v", m.ID, err)
		}
	}
}

// storeEvent queues one message for the events worker. Meta retries
// deliveries, so a message ID that is already stored is skipped.
func storeEvent(db *gorm.DB, m IncomingTextMessage) error {
	if m.ID == "" {
		m.ID = "local-" + uuid.NewString()
	} else {
		var count int
		if err := db.Model(&models.Event{}).Where("message_id = ?", m.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
	}

	now := time.Now()
	ev := models.Event{
		Recipient:   tools.NormalizePhoneWithCode(m.From, conf.Bot.DialingCode),
		From:        m.From,
		SenderName:  m.Name,
		MessageID:   m.ID,
		Text:        m.Text,
		Status:      models.EVENT_STATUS_PENDING,
		ScheduledAt: &now,
	}
	return db.Create(&ev).Error
}
