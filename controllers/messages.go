package controllers

import (
	"net/http"
	"strings"

	"beaconmarket/bot"

	"github.com/gin-gonic/gin"
)

type MessageRequest struct {
	Text   string `json:"text" form:"text"`
	Sender string `json:"sender" form:"sender"`
	Name   string `json:"name" form:"name"`
}

// POST /api/messages
//
// Runs one message through the bot synchronously and returns the reply,
// or {"reply": null} when the bot stays silent.
func PostMessage(c *gin.Context) {
	b := BotInstance(c)
	if b == nil {
		RespondError(c, "bot not configured in context", http.StatusInternalServerError)
		return
	}

	var req MessageRequest
	if err := c.ShouldBind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Sender) == "" {
		RespondError(c, "sender is required", http.StatusBadRequest)
		return
	}

	reply, ok := b.HandleMessage(c.Request.Context(), bot.Message{
		Text:       req.Text,
		Sender:     req.Sender,
		SenderName: req.Name,
	})
	if !ok {
		RespondSuccess(c, gin.H{"reply": nil})
		return
	}
	RespondSuccess(c, gin.H{"reply": reply})
}
