package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamor-backend/internal/model"
	"yamor-backend/internal/schedule"
)

type createMedicationRequest struct {
	Name      string   `json:"name" binding:"required"`
	Dosage    string   `json:"dosage"`
	Frequency []string `json:"frequency"`
	Stock     int      `json:"stock"`
	ImagePath string   `json:"image_path"`
}

// CreateMedication handles the POST /api/medications request. Name is the
// only required field; the frequency set is normalized on the way in.
func (h *Handler) CreateMedication(c *gin.Context) {
	var req createMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Stock < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Stock cannot be negative"})
		return
	}

	med := model.Medication{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: schedule.ParseSet(req.Frequency),
		Stock:     req.Stock,
		ImagePath: req.ImagePath,
	}
	if err := h.store.CreateMedication(c.Request.Context(), &med); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save medication"})
		return
	}

	c.JSON(http.StatusCreated, med)
}

// ListMedications handles the GET /api/medications request.
func (h *Handler) ListMedications(c *gin.Context) {
	meds, err := h.store.ListMedications(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve medications"})
		return
	}
	c.JSON(http.StatusOK, meds)
}

// ListActivity handles the GET /api/activity request, returning the
// adherence ledger joined with medication names, newest first.
func (h *Handler) ListActivity(c *gin.Context) {
	rows, err := h.store.ListActivityLogs(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activity logs"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
