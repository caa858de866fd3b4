package bot

import (
	"context"
	"log"
	"strings"

	"beaconmarket/models"
)

// removeListing handles "SOLD" and "SOLD: <title words>". The newest active
// listing is removed unless the trailing text matches another title.
func (b *Bot) removeListing(ctx context.Context, text, identity string) string {
	query := strings.TrimLeft(afterPrefix(text, "SOLD"), ": \t")

	listings, err := b.activeListings(ctx, identity, 0)
	if err != nil {
		log.Printf("bot: load listings for sold: %v", err)
		return REPLY_ERROR
	}
	if len(listings) == 0 {
		return REPLY_SOLD_NONE
	}

	target := pickListing(listings, query)
	if _, err := b.store.Update(ctx, target.ID, map[string]any{
		"status": string(models.LISTING_STATUS_INACTIVE),
	}); err != nil {
		log.Printf("bot: mark listing %s sold: %v", target.ID, err)
		return REPLY_SOLD_ERROR
	}

	log.Printf("bot: listing %s marked sold by %s", target.ID, identity)
	return soldReply(target.Title)
}

// pickListing returns the first listing whose title contains query
// (case-insensitive), or the first listing when nothing matches.
func pickListing(listings []models.Listing, query string) models.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q != "" {
		for _, l := range listings {
			if strings.Contains(strings.ToLower(l.Title), q) {
				return l
			}
		}
	}
	return listings[0]
}
