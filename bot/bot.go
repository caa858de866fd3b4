// Package bot interprets marketplace commands sent over WhatsApp.
//
// A message is rate limited, classified by its prefix and dispatched to
// one handler. Every handler returns the reply text; the caller decides how
// to deliver it.
package bot

import (
	"context"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"beaconmarket/config"
	dbpkg "beaconmarket/db"
	"beaconmarket/extractor"
	"beaconmarket/models"
	"beaconmarket/ratelimit"
	"beaconmarket/tools"
)

type Config struct {
	BaseURL     string // browse site, without trailing slash
	DialingCode string
	Now         func() time.Time
}

// Message is one inbound chat message.
type Message struct {
	Text       string
	Sender     string // phone number in any format
	SenderName string // WhatsApp profile name, may be empty
	// Infer overrides the extractor's inference function for this message.
	Infer extractor.InferFunc
}

type Bot struct {
	store       dbpkg.ListingStore
	limiter     *ratelimit.Limiter
	extractor   *extractor.Pipeline
	baseURL     string
	dialingCode string
	now         func() time.Time
}

func New(store dbpkg.ListingStore, limiter *ratelimit.Limiter, pipeline *extractor.Pipeline, cfg Config) *Bot {
	if limiter == nil {
		limiter = ratelimit.New(nil, 0, 0)
	}
	if pipeline == nil {
		pipeline = extractor.New(nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}
	if cfg.DialingCode == "" {
		cfg.DialingCode = tools.DefaultDialingCode
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Bot{
		store:       store,
		limiter:     limiter,
		extractor:   pipeline,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		dialingCode: cfg.DialingCode,
		now:         cfg.Now,
	}
}

// HandleMessage returns the reply for msg. ok is false when the bot must
// stay silent. Every message counts against the sender's rate window before
// it is classified, so a rate-limited sender always gets the rate-limit
// reply. A panic in a handler becomes the generic error reply.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) (reply string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bot: panic handling message from %s: %v\n%s", msg.Sender, r, debug.Stack())
			reply, ok = REPLY_ERROR, true
		}
	}()

	identity := tools.NormalizePhoneWithCode(msg.Sender, b.dialingCode)
	if !b.limiter.Allow(identity, b.now()) {
		log.Printf("bot: rate limited %s", identity)
		return REPLY_RATE_LIMITED, true
	}

	text := strings.TrimSpace(msg.Text)
	if tooShort(text) {
		return "", false
	}

	switch Classify(text) {
	case CommandList:
		return b.createListing(ctx, text, identity, msg), true
	case CommandSold:
		return b.removeListing(ctx, text, identity), true
	case CommandEdit:
		return b.editListing(ctx, text, identity), true
	case CommandHelp:
		return HelpText(b.baseURL), true
	}
	return "", false
}

// activeListings returns the sender's active listings, newest first.
func (b *Bot) activeListings(ctx context.Context, identity string, limit int) ([]models.Listing, error) {
	q := dbpkg.NewQuery().
		Eq("whatsapp", identity).
		Eq("status", string(models.LISTING_STATUS_ACTIVE)).
		Limit(limit)
	return b.store.Select(ctx, q)
}
