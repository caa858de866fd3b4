package controllers

import (
	"beaconmarket/bot"
	"beaconmarket/config"

	"github.com/gin-gonic/gin"
)

const botKey = "bot"

var conf config.Configuration

func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

// SetBotToContext exposes the command bot to controllers.
func SetBotToContext(b *bot.Bot) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(botKey, b)
		c.Next()
	}
}

func BotInstance(c *gin.Context) *bot.Bot {
	v, ok := c.Get(botKey)
	if !ok {
		return nil
	}
	b, _ := v.(*bot.Bot)
	return b
}
