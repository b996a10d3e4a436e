package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type vapidKeyResponse struct {
	PublicKey  string `json:"public_key"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// GetVAPIDPublicKey hands browsers the application server key they need to
// subscribe to laptop-available pushes, along with how long the push
// service keeps an undelivered message.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "laptop availability notifications are disabled",
			"kind":  "PushDisabled",
		})
		return
	}
	c.JSON(http.StatusOK, vapidKeyResponse{
		PublicKey:  h.webpush.VAPIDPublicKey,
		TTLSeconds: h.webpush.TTL,
	})
}
