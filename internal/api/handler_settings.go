package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamor-backend/internal/model"
)

type settingsResponse struct {
	Name        string `json:"name"`
	RecipientID string `json:"recipient_id"`
	Configured  bool   `json:"configured"`
}

// GetSettings handles the GET /api/settings request. The channel token is
// never echoed back; only whether the channel is usable.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.store.GetCaregiverSettings(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	if settings == nil {
		c.JSON(http.StatusOK, settingsResponse{})
		return
	}
	c.JSON(http.StatusOK, settingsResponse{
		Name:        settings.Name,
		RecipientID: settings.RecipientID,
		Configured:  settings.Configured(),
	})
}

type putSettingsRequest struct {
	Name         string `json:"name"`
	ChannelToken string `json:"channel_token"`
	RecipientID  string `json:"recipient_id"`
}

// PutSettings handles the PUT /api/settings request with upsert semantics:
// the single settings row is created on first save and overwritten after.
func (h *Handler) PutSettings(c *gin.Context) {
	var req putSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := model.CaregiverSettings{
		Name:         req.Name,
		ChannelToken: req.ChannelToken,
		RecipientID:  req.RecipientID,
	}
	if err := h.store.SaveCaregiverSettings(c.Request.Context(), &settings); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, settingsResponse{
		Name:        settings.Name,
		RecipientID: settings.RecipientID,
		Configured:  settings.Configured(),
	})
}
