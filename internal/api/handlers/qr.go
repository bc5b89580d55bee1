package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// JoinQRCode serves a PNG QR code pointing at the arcade's join URL, for the
// kiosk screen.
func JoinQRCode(joinURL string) gin.HandlerFunc {
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		log.Error().Str("component", "api").Err(err).Str("url", joinURL).Msg("failed to render join QR code")
	}

	return func(c *gin.Context) {
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "qr code unavailable"})
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, "image/png", png)
	}
}
