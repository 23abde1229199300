package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"yamor-backend/internal/model"
	"yamor-backend/internal/notify"
	"yamor-backend/internal/schedule"
	"yamor-backend/internal/store"
)

// thaiPeriodLabels render a period tag for the caregiver message.
var thaiPeriodLabels = map[schedule.Period]string{
	schedule.Morning: "เช้า",
	schedule.Noon:    "กลางวัน",
	schedule.Evening: "เย็น",
	schedule.Bedtime: "ก่อนนอน",
}

type dashboardResponse struct {
	Period      schedule.Period    `json:"period"`
	GeneratedAt time.Time          `json:"generated_at"`
	Due         []model.Medication `json:"due"`
	NothingDue  bool               `json:"nothing_due"`
}

// GetDashboard handles the GET /api/dashboard request: classify the current
// period and list the medications due in it. An empty selection is reported
// as an explicit nothing-due state.
func (h *Handler) GetDashboard(c *gin.Context) {
	now := h.now().In(h.loc)
	period := schedule.ClassifyTime(now)

	meds, err := h.store.ListMedications(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve medications"})
		return
	}

	due := make([]model.Medication, 0)
	for _, med := range meds {
		if med.Frequency.Contains(period) {
			due = append(due, med)
		}
	}

	c.JSON(http.StatusOK, dashboardResponse{
		Period:      period,
		GeneratedAt: now,
		Due:         due,
		NothingDue:  len(due) == 0,
	})
}

type recordActivityRequest struct {
	Action model.Action `json:"action" binding:"required"`
	Note   string       `json:"note"`
}

type recordActivityResponse struct {
	LogID        int64  `json:"log_id"`
	Stock        int    `json:"stock"`
	Overdrawn    bool   `json:"overdrawn"`
	Notification string `json:"notification"`
}

// RecordActivity handles POST /api/medications/{med_id}/activity. For a
// taken action the ledger write and the stock decrement commit together;
// the caregiver notification is dispatched afterwards and can never undo
// the committed write.
func (h *Handler) RecordActivity(c *gin.Context) {
	medID, err := strconv.ParseInt(c.Param("med_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid medication ID"})
		return
	}

	var req recordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Action.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown action %q", req.Action)})
		return
	}

	now := h.now().In(h.loc)
	period := schedule.ClassifyTime(now)
	note := req.Note
	if note == "" {
		note = string(period)
	}

	result, err := h.store.RecordActivity(c.Request.Context(), medID, req.Action, note)
	if err != nil {
		if errors.Is(err, store.ErrMedicationNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Medication not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to record activity"})
		return
	}

	notification := "disabled"
	if req.Action == model.ActionTaken && h.pool != nil {
		settings, err := h.store.GetCaregiverSettings(c.Request.Context())
		if err == nil && settings.Configured() {
			text := fmt.Sprintf("💊 กินยา \"%s\" ช่วง%sแล้ว เหลืออีก %d ครั้ง",
				result.MedicationName, thaiPeriodLabels[period], result.StockRemaining)
			if result.Overdrawn {
				text += " (ยาหมดแล้ว กรุณาเติมยา)"
			}
			if h.pool.Dispatch(notify.Job{Text: text}) {
				notification = "queued"
			} else {
				notification = "dropped"
			}
		}
	}

	c.JSON(http.StatusOK, recordActivityResponse{
		LogID:        result.LogID,
		Stock:        result.StockRemaining,
		Overdrawn:    result.Overdrawn,
		Notification: notification,
	})
}
