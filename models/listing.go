package models

import "time"

// Category groups listings on the browse page.
type Category string

/************************************************
/**** MARK: LISTING CATEGORIES ****/
/************************************************/
const (
	CATEGORY_HOLIDAY_HOMES Category = "holiday-homes"
	CATEGORY_EQUIPMENT     Category = "equipment"
	CATEGORY_SERVICES      Category = "services"
	CATEGORY_EVENTS        Category = "events"
	CATEGORY_PARKING       Category = "parking"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CATEGORY_HOLIDAY_HOMES,
	CATEGORY_EQUIPMENT,
	CATEGORY_SERVICES,
	CATEGORY_EVENTS,
	CATEGORY_PARKING,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// PriceUnit says what the price pays for.
type PriceUnit string

/************************************************
/**** MARK: PRICE UNITS ****/
/************************************************/
const (
	PRICE_UNIT_NIGHT   PriceUnit = "per night"
	PRICE_UNIT_DAY     PriceUnit = "per day"
	PRICE_UNIT_HOUR    PriceUnit = "per hour"
	PRICE_UNIT_WEEK    PriceUnit = "per week"
	PRICE_UNIT_MONTH   PriceUnit = "per month"
	PRICE_UNIT_SERVICE PriceUnit = "per service"
	PRICE_UNIT_TOTAL   PriceUnit = "total"
)

var PriceUnits = []PriceUnit{
	PRICE_UNIT_NIGHT,
	PRICE_UNIT_DAY,
	PRICE_UNIT_HOUR,
	PRICE_UNIT_WEEK,
	PRICE_UNIT_MONTH,
	PRICE_UNIT_SERVICE,
	PRICE_UNIT_TOTAL,
}

func (u PriceUnit) Valid() bool {
	for _, v := range PriceUnits {
		if v == u {
			return true
		}
	}
	return false
}

// ListingStatus is the listing lifecycle. Listings are never deleted,
// SOLD only flips them to inactive.
type ListingStatus string

/************************************************
/**** MARK: LISTING STATUS ****/
/************************************************/
const (
	LISTING_STATUS_ACTIVE   ListingStatus = "active"
	LISTING_STATUS_INACTIVE ListingStatus = "inactive"
)

const DEFAULT_OWNER_NAME = "Beacon Isle Resident"

const TITLE_MAX_LEN = 60

// Listing is a marketplace offer created over WhatsApp.
// WhatsApp holds the normalized phone number of the owner and is the only
// ownership check: every mutation filters on it.
type Listing struct {
	ID               string        `gorm:"primary_key;type:varchar(36)" json:"id"`
	Category         Category      `gorm:"not null;index" json:"category"`
	Title            string        `gorm:"not null" json:"title"`
	Description      string        `gorm:"type:text" json:"description"`
	Price            *float64      `json:"price"`
	PriceUnit        PriceUnit     `gorm:"column:price_unit;not null" json:"price_unit"`
	OwnerName        string        `gorm:"column:owner_name;not null;default:''" json:"owner_name"`
	WhatsApp         string        `gorm:"column:whatsapp;not null;index" json:"whatsapp"`
	VerifiedResident bool          `gorm:"column:verified_resident;not null;default:false" json:"verified_resident"`
	Status           ListingStatus `gorm:"not null;default:'active';index" json:"status"`
	ImageURL         string        `gorm:"column:image_url;default:''" json:"image_url,omitempty"`
	CreatedAt        *time.Time    `gorm:"index" json:"created_at,omitempty"`
	UpdatedAt        *time.Time    `json:"updated_at,omitempty"`
}

// MissingFields returns the first field that blocks persisting the listing.
func (l Listing) MissingFields() string {
	if !l.Category.Valid() {
		return "category"
	} else if l.Title == "" {
		return "title"
	} else if l.Price == nil || *l.Price < 0 {
		return "price"
	} else if !l.PriceUnit.Valid() {
		return "price_unit"
	} else if l.WhatsApp == "" {
		return "whatsapp"
	}
	return ""
}
