package bot

import (
	"context"
	"log"
	"strings"

	"beaconmarket/extractor"
	"beaconmarket/models"
)

// createListing handles "LIST: <details>".
func (b *Bot) createListing(ctx context.Context, text, identity string, msg Message) string {
	details := strings.TrimSpace(afterPrefix(text, "LIST:"))
	if details == "" {
		return REPLY_LIST_EMPTY
	}

	fields := b.extractor.Extract(ctx, details, msg.Infer)
	if !fields.Acceptable() {
		log.Printf("bot: unparseable listing from %s (%s): %q", identity, fields.Source, details)
		return REPLY_LIST_UNPARSEABLE
	}

	listing := newListing(fields, identity, msg.SenderName)
	created, err := b.store.Insert(ctx, &listing)
	if err != nil {
		log.Printf("bot: create listing: %v", err)
		return REPLY_LIST_ERROR
	}

	log.Printf("bot: listing %s created by %s (%s)", created.ID, identity, fields.Source)
	return createdReply(created, b.baseURL)
}

func newListing(f extractor.Fields, identity, senderName string) models.Listing {
	owner := strings.TrimSpace(senderName)
	if owner == "" {
		owner = models.DEFAULT_OWNER_NAME
	}
	return models.Listing{
		Category:         f.Category,
		Title:            f.Title,
		Description:      f.Description,
		Price:            f.Price,
		PriceUnit:        f.PriceUnit,
		OwnerName:        owner,
		WhatsApp:         identity,
		VerifiedResident: false,
		Status:           models.LISTING_STATUS_ACTIVE,
	}
}
