// Package app assembles the bot from a Configuration. The HTTP server and
// the command line tool share it so both behave the same way.
package app

import (
	"context"
	"log"
	"strings"
	"time"

	"beaconmarket/bot"
	"beaconmarket/config"
	dbpkg "beaconmarket/db"
	"beaconmarket/extractor"
	"beaconmarket/ratelimit"
	"beaconmarket/tools"

	"github.com/jinzhu/gorm"
)

// ListingStore picks the listing backend. conn may be nil when the
// supabase backend is configured.
func ListingStore(cfg config.Configuration, conn *gorm.DB) dbpkg.ListingStore {
	if cfg.ListingStore == config.STORE_SUPABASE {
		log.Printf("app: listings stored in supabase table %s", cfg.Supabase.Table)
		return dbpkg.NewRestListings(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Table)
	}
	return dbpkg.NewGormListings(conn)
}

// Pipeline returns the extractor, with OpenAI inference when a key is set.
func Pipeline(cfg config.Configuration) *extractor.Pipeline {
	client := tools.NewOpenAIClient(cfg.OpenAI.ApiKey, cfg.OpenAI.Model)
	if !client.Configured() {
		log.Printf("app: OPENAI_API_KEY not set, listings use the heuristic extractor")
		return extractor.New(nil)
	}
	return extractor.New(client.Complete)
}

// Bot wires store, rate limiter and extractor. A nil pipeline means
// Pipeline(cfg). The returned MemoryStore holds the rate windows so the
// caller can sweep it.
func Bot(cfg config.Configuration, store dbpkg.ListingStore, pipeline *extractor.Pipeline) (*bot.Bot, *ratelimit.MemoryStore) {
	if pipeline == nil {
		pipeline = Pipeline(cfg)
	}
	windows := ratelimit.NewMemoryStore()
	limiter := ratelimit.New(windows, cfg.Bot.RateLimit, time.Duration(cfg.Bot.RateWindow)*time.Second)
	b := bot.New(store, limiter, pipeline, bot.Config{
		BaseURL:     cfg.Bot.BaseURL,
		DialingCode: cfg.Bot.DialingCode,
	})
	return b, windows
}

// WhatsApp returns the Cloud API client for the configured number.
func WhatsApp(cfg config.Configuration) tools.WhatsAppClient {
	return tools.WhatsAppClient{
		AccessToken:   strings.TrimSpace(cfg.WhatsApp.AccessToken),
		ApiVersion:    cfg.WhatsApp.ApiVersion,
		PhoneNumberID: strings.TrimSpace(cfg.WhatsApp.PhoneNumberID),
		WabaID:        strings.TrimSpace(cfg.WhatsApp.WabaID),
	}
}

// SweepRateWindows drops expired rate windows every interval until ctx ends.
func SweepRateWindows(ctx context.Context, windows *ratelimit.MemoryStore, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := windows.Sweep(now); n > 0 {
					log.Printf("app: dropped %d expired rate windows", n)
				}
			}
		}
	}()
}
