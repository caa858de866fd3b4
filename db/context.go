package db

import (
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const (
	dbKey       = "db"
	listingsKey = "listings"
)

// Use this middleware in the gin setup
func SetDBtoContext(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, database)
		c.Next()
	}
}

func DBInstance(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// SetListingsToContext exposes the listing store to controllers.
func SetListingsToContext(store ListingStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(listingsKey, store)
		c.Next()
	}
}

func ListingsInstance(c *gin.Context) ListingStore {
	v, ok := c.Get(listingsKey)
	if !ok {
		return nil
	}
	store, _ := v.(ListingStore)
	return store
}
