package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reels-miniapp-backend/internal/common/logger"
	"reels-miniapp-backend/internal/features/user/models"
	"reels-miniapp-backend/internal/features/user/service"
)

type UserHandler struct {
	service  service.UserService
	dataPath string
}

func NewUserHandler(service service.UserService, dataPath string) *UserHandler {
	return &UserHandler{
		service:  service,
		dataPath: dataPath,
	}
}

// StatusUpdate is the PUT /api/users/:id/status request body.
type StatusUpdate struct {
	ReelsStatus string `json:"reels_status"`
}

func (h *UserHandler) RegisterRoutes(router *gin.Engine, apiMiddleware ...gin.HandlerFunc) {
	router.GET("/", h.health)

	api := router.Group("/api", apiMiddleware...)
	{
		api.GET("/users", h.getUsers)
		api.POST("/users", h.upsertUser)
		api.PUT("/users/:id/status", h.updateStatus)
		api.GET("/stats", h.getStats)
	}

	// Back-compat surface predating the /api routes.
	router.POST("/save_user_data", h.legacySave)
	router.GET("/get_user_data", h.legacyGet)
	router.GET("/debug/users", h.debugUsers)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})
}

func (h *UserHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "reels-miniapp-api",
		"file":    h.dataPath,
	})
}

// @Summary List or look up users
// @Description Without filters returns the whole collection; with user_id or telegram_id returns the first match or null.
// @Tags users
// @Produce json
// @Param user_id query string false "Public identifier"
// @Param telegram_id query string false "Telegram identifier"
// @Success 200 {object} models.UserProfile "Matching record, null, or full array"
// @Router /api/users [get]
func (h *UserHandler) getUsers(c *gin.Context) {
	userID := c.Query("user_id")
	telegramID := c.Query("telegram_id")

	if userID == "" && telegramID == "" {
		records, err := h.service.List(c.Request.Context())
		if err != nil {
			h.internalError(c, err, "Failed to load user data")
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	record, err := h.service.Find(c.Request.Context(), userID, telegramID)
	if err != nil {
		h.internalError(c, err, "Failed to load user data")
		return
	}
	c.JSON(http.StatusOK, record)
}

// @Summary Merge-upsert a user record
// @Description Looks up by user_id or telegram_id and merges the partial payload, creating the record when absent.
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} models.UserProfile "Merged record"
// @Failure 400 {object} map[string]string "Missing identifier"
// @Failure 500 {object} map[string]string "Persistence failure"
// @Router /api/users [post]
func (h *UserHandler) upsertUser(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if payload == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Empty payload"})
		return
	}

	merged, err := h.service.Upsert(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, service.ErrMissingIdentifier) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id or telegram_id required"})
			return
		}
		h.internalError(c, err, "Failed to save user data")
		return
	}
	c.JSON(http.StatusOK, merged)
}

// @Summary Update reels moderation status
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "user_id or telegram_id"
// @Success 200 {object} models.UserProfile "Updated record"
// @Failure 400 {object} map[string]string "Missing reels_status"
// @Failure 404 {object} map[string]string "Unknown user"
// @Router /api/users/{id}/status [put]
func (h *UserHandler) updateStatus(c *gin.Context) {
	var input StatusUpdate
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.ReelsStatus) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "reels_status required"})
		return
	}

	record, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), input.ReelsStatus)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.internalError(c, err, "Failed to save user data")
		return
	}
	c.JSON(http.StatusOK, record)
}

// @Summary Global stats
// @Tags stats
// @Produce json
// @Success 200 {object} models.GlobalStats
// @Router /api/stats [get]
func (h *UserHandler) getStats(c *gin.Context) {
	stats, err := h.service.GlobalStats(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "Failed to load stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *UserHandler) legacySave(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	if _, err := h.service.SaveByTelegramID(c.Request.Context(), payload); err != nil {
		if errors.Is(err, service.ErrMissingIdentifier) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing telegram_id"})
			return
		}
		h.internalError(c, err, "Failed to save user data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) legacyGet(c *gin.Context) {
	telegramID := c.Query("telegram_id")
	if telegramID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "telegram_id required"})
		return
	}

	record, err := h.service.Find(c.Request.Context(), "", telegramID)
	if err != nil {
		h.internalError(c, err, "Failed to load user data")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *UserHandler) debugUsers(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "Failed to load user data")
		return
	}
	if records == nil {
		records = []*models.UserProfile{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		h.internalError(c, err, "Failed to load user data")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *UserHandler) internalError(c *gin.Context, err error, msg string) {
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
}
