package bot

import (
	"context"
	"log"
	"regexp"
	"strings"

	"beaconmarket/extractor"
	"beaconmarket/models"
)

var (
	editPriceRegexp  = regexp.MustCompile(`(?i)price.*?(?:to|:)?\s*r?\s*(\d+(?:,\d{3})*(?:\.\d+)?)(k\b)?`)
	editQuotedRegexp = regexp.MustCompile(`["'](.+)["']`)
	editToRegexp     = regexp.MustCompile(`(?i)to\s+(.+)`)
)

// editListing handles "EDIT: <change>" against the sender's newest active
// listing. Only the fields the change names are written.
func (b *Bot) editListing(ctx context.Context, text, identity string) string {
	change := strings.TrimSpace(afterPrefix(text, "EDIT:"))

	listings, err := b.activeListings(ctx, identity, 1)
	if err != nil {
		log.Printf("bot: load listing for edit: %v", err)
		return REPLY_ERROR
	}
	if len(listings) == 0 {
		return REPLY_EDIT_NONE
	}
	listing := listings[0]

	fields := parseEdit(change, listing)
	if len(fields) == 0 {
		return REPLY_EDIT_UNPARSEABLE
	}

	updated, err := b.store.Update(ctx, listing.ID, fields)
	if err != nil {
		log.Printf("bot: update listing %s: %v", listing.ID, err)
		return REPLY_EDIT_ERROR
	}

	title := listing.Title
	if updated != nil && updated.Title != "" {
		title = updated.Title
	}
	log.Printf("bot: listing %s edited by %s (%d fields)", listing.ID, identity, len(fields))
	return updatedReply(title, b.baseURL)
}

// parseEdit turns a change request into column updates.
func parseEdit(change string, current models.Listing) map[string]any {
	fields := map[string]any{}

	if m := editPriceRegexp.FindStringSubmatch(change); m != nil {
		if price, err := extractor.ParseAmount(m[1], m[2] != ""); err == nil {
			fields["price"] = price
		}
	}

	lower := strings.ToLower(change)
	if strings.Contains(lower, "description") || strings.Contains(lower, "add") {
		if addition := descriptionAddition(change); addition != "" {
			fields["description"] = strings.TrimSpace(current.Description + " " + addition)
		}
	}

	return fields
}

func descriptionAddition(change string) string {
	if m := editQuotedRegexp.FindStringSubmatch(change); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := editToRegexp.FindStringSubmatch(change); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
