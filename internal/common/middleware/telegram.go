package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// TelegramInitData validates the Telegram Mini App init_data header against
// the bot token and exposes the parsed user to downstream handlers. The
// mini-app API runs open by default; this is only mounted when the deployment
// opts in.
func TelegramInitData(botToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("init_data")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
			return
		}

		// No expiration check: launches can stay open for days.
		if err := initdata.Validate(raw, botToken, time.Duration(0)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid init data"})
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to parse init data"})
			return
		}

		c.Set("telegram_user", parsed.User)
		c.Next()
	}
}
