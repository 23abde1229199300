package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamor-backend/internal/ics"
	"yamor-backend/internal/model"
	"yamor-backend/internal/vision"
)

type createAppointmentRequest struct {
	Hospital string `json:"hospital" binding:"required"`
	Doctor   string `json:"doctor"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Note     string `json:"note"`
}

// CreateAppointment handles the POST /api/appointments request. Hospital is
// required; date and time are normalized with the same rules as AI drafts.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt := model.Appointment{
		Hospital: req.Hospital,
		Doctor:   req.Doctor,
		Date:     vision.NormalizeDate(req.Date, false),
		Time:     vision.NormalizeTime(req.Time),
		Note:     req.Note,
	}
	if err := h.store.CreateAppointment(c.Request.Context(), &appt); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save appointment"})
		return
	}

	c.JSON(http.StatusCreated, appt)
}

// ListAppointments handles the GET /api/appointments request.
func (h *Handler) ListAppointments(c *gin.Context) {
	appts, err := h.store.ListAppointments(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve appointments"})
		return
	}
	c.JSON(http.StatusOK, appts)
}

// ExportCalendar handles the GET /api/appointments/calendar.ics request:
// every appointment as one calendar event with a one-hour default duration.
func (h *Handler) ExportCalendar(c *gin.Context) {
	appts, err := h.store.ListAppointments(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve appointments"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="appointments.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics.BuildCalendar(appts, h.loc)))
}
