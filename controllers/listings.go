package controllers

import (
	"log"
	"net/http"
	"strings"

	dbpkg "beaconmarket/db"
	"beaconmarket/feed"
	"beaconmarket/models"

	"github.com/gin-gonic/gin"
)

func feedInstance(c *gin.Context) *feed.Feed {
	store := dbpkg.ListingsInstance(c)
	if store == nil {
		RespondError(c, "listing store not configured in context", http.StatusInternalServerError)
		return nil
	}
	return feed.New(store, conf.Bot.DialingCode)
}

func respondFeedError(c *gin.Context, err error) {
	log.Printf("listings: %v", err)
	RespondError(c, "could not load listings", http.StatusBadGateway)
}

// GET /api/listings/sections
func GetListingSections(c *gin.Context) {
	f := feedInstance(c)
	if f == nil {
		return
	}
	sections, err := f.Sections(c.Request.Context())
	if err != nil {
		respondFeedError(c, err)
		return
	}
	RespondSuccess(c, sections)
}

// GET /api/listings/marketplace?category=&q=
func GetMarketplaceListings(c *gin.Context) {
	f := feedInstance(c)
	if f == nil {
		return
	}
	listings, err := f.Marketplace(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		respondFeedError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"listings": listings})
}

// GET /api/listings/recent?limit=
func GetRecentListings(c *gin.Context) {
	f := feedInstance(c)
	if f == nil {
		return
	}
	listings, err := f.Recent(c.Request.Context(), QueryInt(c, "limit", feed.RecentLimit))
	if err != nil {
		respondFeedError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"listings": listings})
}

// GET /api/listings/category/:category
func GetListingsByCategory(c *gin.Context) {
	category := models.Category(strings.ToLower(strings.TrimSpace(c.Param("category"))))
	if !category.Valid() {
		RespondError(c, "unknown category", http.StatusBadRequest)
		return
	}
	f := feedInstance(c)
	if f == nil {
		return
	}
	listings, err := f.ByCategory(c.Request.Context(), category)
	if err != nil {
		respondFeedError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"listings": listings, "label": feed.Label(category)})
}
