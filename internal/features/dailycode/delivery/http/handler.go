package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reels-miniapp-backend/internal/features/dailycode/service"
)

type DailyCodeHandler struct {
	service *service.Service
}

func NewDailyCodeHandler(service *service.Service) *DailyCodeHandler {
	return &DailyCodeHandler{service: service}
}

func (h *DailyCodeHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/daily-code", h.getDailyCode)
	router.GET("/admin/daily-code", h.adminPage)
}

// @Summary Get daily verification code
// @Description Returns the 9-digit code for the current UTC day and when it rotates.
// @Tags daily-code
// @Produce json
// @Success 200 {object} service.DailyCode "Current code"
// @Router /api/daily-code [get]
func (h *DailyCodeHandler) getDailyCode(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Current())
}

func (h *DailyCodeHandler) adminPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(adminPageHTML))
}

const adminPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Daily Code</title>
  <style>
    body { font-family: sans-serif; margin: 40px auto; max-width: 420px; text-align: center; }
    #code { font-size: 2.5rem; letter-spacing: 0.3rem; margin: 24px 0; }
    button { padding: 10px 24px; font-size: 1rem; cursor: pointer; }
    #meta { color: #666; }
  </style>
</head>
<body>
  <h1>Daily verification code</h1>
  <div id="code">—</div>
  <p id="meta"></p>
  <button id="reveal">Show today's code</button>
  <script>
    document.getElementById('reveal').addEventListener('click', async () => {
      const res = await fetch('/api/daily-code');
      const data = await res.json();
      document.getElementById('code').textContent = data.code;
      document.getElementById('meta').textContent =
        data.date + ' · expires ' + data.expires_at;
    });
  </script>
</body>
</html>
`
