// Package feed builds the read-only listing views of the public browse site.
package feed

import (
	"context"
	"net/url"
	"strings"

	dbpkg "beaconmarket/db"
	"beaconmarket/models"
	"beaconmarket/tools"
)

const (
	BeaconLimit      = 6
	MarketplaceLimit = 12
	RentalsLimit     = 6
	RecentLimit      = 6
	MaxLimit         = 100
)

var categoryLabels = map[models.Category]string{
	models.CATEGORY_HOLIDAY_HOMES: "Holiday Home",
	models.CATEGORY_EQUIPMENT:     "Equipment",
	models.CATEGORY_SERVICES:      "Service",
	models.CATEGORY_EVENTS:        "Event Gear",
	models.CATEGORY_PARKING:       "Parking",
}

var categoryEmojis = map[models.Category]string{
	models.CATEGORY_HOLIDAY_HOMES: "🏡",
	models.CATEGORY_EQUIPMENT:     "🚴",
	models.CATEGORY_SERVICES:      "🧹",
	models.CATEGORY_EVENTS:        "🎨",
	models.CATEGORY_PARKING:       "🚗",
}

// uiCategories maps the marketplace filter labels to stored categories.
var uiCategories = map[string]models.Category{
	"furniture":   models.CATEGORY_EVENTS,
	"electronics": models.CATEGORY_EQUIPMENT,
	"sports":      models.CATEGORY_EQUIPMENT,
	"kids":        models.CATEGORY_EVENTS,
	"home":        models.CATEGORY_EVENTS,
	"other":       models.CATEGORY_PARKING,
}

// Card is a listing as the browse site renders it.
type Card struct {
	models.Listing
	CategoryLabel string `json:"category_label"`
	CategoryEmoji string `json:"category_emoji"`
	ContactURL    string `json:"contact_url"`
}

type Sections struct {
	Beacon      []Card `json:"beacon"`
	Marketplace []Card `json:"marketplace"`
	Rentals     []Card `json:"rentals"`
}

// Feed reads listings for the browse site.
type Feed struct {
	Store       dbpkg.ListingStore
	DialingCode string
}

func New(store dbpkg.ListingStore, dialingCode string) *Feed {
	if dialingCode == "" {
		dialingCode = tools.DefaultDialingCode
	}
	return &Feed{Store: store, DialingCode: dialingCode}
}

func active() dbpkg.Query {
	return dbpkg.NewQuery().Eq("status", string(models.LISTING_STATUS_ACTIVE))
}

// Sections loads the three home page sections.
func (f *Feed) Sections(ctx context.Context) (Sections, error) {
	var s Sections

	beacon, err := f.Store.Select(ctx, active().
		Eq("category", string(models.CATEGORY_EQUIPMENT)).
		Limit(BeaconLimit))
	if err != nil {
		return s, err
	}
	marketplace, err := f.Store.Select(ctx, active().
		In("category",
			string(models.CATEGORY_EQUIPMENT),
			string(models.CATEGORY_EVENTS),
			string(models.CATEGORY_PARKING)).
		Limit(MarketplaceLimit))
	if err != nil {
		return s, err
	}
	rentals, err := f.Store.Select(ctx, active().
		Eq("category", string(models.CATEGORY_HOLIDAY_HOMES)).
		Limit(RentalsLimit))
	if err != nil {
		return s, err
	}

	s.Beacon = f.cards(beacon)
	s.Marketplace = f.cards(marketplace)
	s.Rentals = f.cards(rentals)
	return s, nil
}

// Marketplace lists active non-rental listings, optionally narrowed by a UI
// category label and a case-insensitive search over title and description.
func (f *Feed) Marketplace(ctx context.Context, uiCategory, search string) ([]Card, error) {
	q := active().Neq("category", string(models.CATEGORY_HOLIDAY_HOMES))
	if c := strings.TrimSpace(uiCategory); c != "" {
		q = q.Eq("category", string(StoredCategory(c)))
	}

	listings, err := f.Store.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	return f.cards(Search(listings, search)), nil
}

// Recent returns the newest active listings.
func (f *Feed) Recent(ctx context.Context, limit int) ([]Card, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	listings, err := f.Store.Select(ctx, active().Limit(limit))
	if err != nil {
		return nil, err
	}
	return f.cards(listings), nil
}

// ByCategory returns every active listing of one stored category.
func (f *Feed) ByCategory(ctx context.Context, category models.Category) ([]Card, error) {
	listings, err := f.Store.Select(ctx, active().Eq("category", string(category)))
	if err != nil {
		return nil, err
	}
	return f.cards(listings), nil
}

// StoredCategory maps a UI filter label; unknown labels pass through.
func StoredCategory(label string) models.Category {
	label = strings.ToLower(strings.TrimSpace(label))
	if c, ok := uiCategories[label]; ok {
		return c
	}
	return models.Category(label)
}

func Search(listings []models.Listing, search string) []models.Listing {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return listings
	}
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Title), needle) ||
			strings.Contains(strings.ToLower(l.Description), needle) {
			out = append(out, l)
		}
	}
	return out
}

func Label(c models.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func Emoji(c models.Category) string {
	if e, ok := categoryEmojis[c]; ok {
		return e
	}
	return "📦"
}

// ContactURL is the wa.me link that opens a chat with the owner.
func ContactURL(l models.Listing, dialingCode string) string {
	number := tools.NormalizePhoneWithCode(l.WhatsApp, dialingCode)
	text := strings.ReplaceAll(url.QueryEscape("Hi! I'm interested in: "+l.Title), "+", "%20")
	return "https://wa.me/" + number + "?text=" + text
}

func (f *Feed) cards(listings []models.Listing) []Card {
	out := make([]Card, 0, len(listings))
	for _, l := range listings {
		out = append(out, Card{
			Listing:       l,
			CategoryLabel: Label(l.Category),
			CategoryEmoji: Emoji(l.Category),
			ContactURL:    ContactURL(l, f.DialingCode),
		})
	}
	return out
}
