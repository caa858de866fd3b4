package router

import (
	"log"

	"beaconmarket/config"
	"beaconmarket/controllers"
	"beaconmarket/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares: the public WhatsApp webhook
// and listing feed, the synchronous message endpoint and the admin event log.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	controllers.SetConfigurations(cfg)

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	api := r.Group("/api")

	// Webhook (WhatsApp Cloud API)
	api.GET("/webhook", controllers.WebhookVerify)
	api.POST("/webhook", controllers.WebhookUpdate)

	// Synchronous entry point (tests, other channels)
	api.POST("/messages", Logger(), controllers.PostMessage)

	// Public listing feed
	api.GET("/listings/sections", Logger(), controllers.GetListingSections)
	api.GET("/listings/marketplace", Logger(), controllers.GetMarketplaceListings)
	api.GET("/listings/recent", Logger(), controllers.GetRecentListings)
	api.GET("/listings/category/:category", Logger(), controllers.GetListingsByCategory)

	// Admin routes
	admin := api.Group("")
	admin.Use(Adminizer(cfg.AdminToken))

	// Events (admin)
	admin.GET("/events", Logger(), controllers.GetEvents)
	admin.GET("/events/stats", Logger(), controllers.GetEventStats)
	admin.GET("/events/:id", Logger(), controllers.GetEventByID)

	log.Printf("Routes initialized")
}
