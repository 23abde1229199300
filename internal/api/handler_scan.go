package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"yamor-backend/internal/vision"
)

const maxScanImageBytes = 10 << 20 // 10 MiB

type scanResponse struct {
	DraftID string `json:"draft_id"`
	Kind    string `json:"kind"`
	Draft   any    `json:"draft"`
}

// Scan handles the POST /api/scan request: a multipart image plus a kind
// (medicine or appointment) yields an AI-extracted draft record awaiting
// user confirmation. The draft is not persisted.
func (h *Handler) Scan(c *gin.Context) {
	if h.vision == nil || !h.vision.Ready() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Image extraction is not configured (missing API key)"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	if fileHeader.Size > maxScanImageBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")

	kind := c.DefaultPostForm("kind", "medicine")
	var draft any
	switch kind {
	case "medicine":
		draft, err = h.vision.ExtractMedicineLabel(c.Request.Context(), image, mimeType)
	case "appointment":
		buddhist := c.PostForm("buddhist") == "true"
		draft, err = h.vision.ExtractAppointmentSlip(c.Request.Context(), image, mimeType, buddhist)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "kind must be medicine or appointment"})
		return
	}

	if err != nil {
		var extErr *vision.ExtractionError
		if errors.As(err, &extErr) {
			// Surface every per-backend reason so the operator can tell a
			// quota problem from a bad key.
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error":    "All extraction backends failed",
				"attempts": extErr.Attempts,
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, scanResponse{
		DraftID: uuid.NewString(),
		Kind:    kind,
		Draft:   draft,
	})
}

// ListVisionModels handles the GET /api/vision/models request: a
// best-effort diagnostic listing of the backend models available to the
// configured credentials.
func (h *Handler) ListVisionModels(c *gin.Context) {
	if h.vision == nil || !h.vision.Ready() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Image extraction is not configured (missing API key)"})
		return
	}

	names, err := h.vision.ListModels(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": names})
}
