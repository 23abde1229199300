package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"yamor-backend/config"
	"yamor-backend/internal/model"
	"yamor-backend/internal/schedule"
	"yamor-backend/internal/store"
)

func newTestRouter(t *testing.T, at time.Time) (*gin.Engine, store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Medication{}, &model.ActivityLog{}, &model.CaregiverSettings{}, &model.Appointment{}))

	s := store.NewGormStore(db)
	handler := NewHandler(s, nil, nil, time.UTC)
	handler.now = func() time.Time { return at }

	cfg := &config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 1}
	return NewRouter(handler, cfg), s
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDashboardFiltersByCurrentPeriod(t *testing.T) {
	morning := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	router, s := newTestRouter(t, morning)

	ctx := context.Background()
	require.NoError(t, s.CreateMedication(ctx, &model.Medication{
		Name: "Paracetamol", Frequency: schedule.ParseSet([]string{"morning", "bedtime"}), Stock: 10,
	}))
	require.NoError(t, s.CreateMedication(ctx, &model.Medication{
		Name: "Metformin", Frequency: schedule.ParseSet([]string{"noon"}), Stock: 10,
	}))

	w := doJSON(router, "GET", "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, schedule.Morning, resp.Period)
	assert.False(t, resp.NothingDue)
	require.Len(t, resp.Due, 1)
	assert.Equal(t, "Paracetamol", resp.Due[0].Name)
}

func TestDashboardNothingDue(t *testing.T) {
	evening := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)
	router, s := newTestRouter(t, evening)

	require.NoError(t, s.CreateMedication(context.Background(), &model.Medication{
		Name: "Paracetamol", Frequency: schedule.ParseSet([]string{"morning"}), Stock: 10,
	}))

	w := doJSON(router, "GET", "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, schedule.Evening, resp.Period)
	assert.True(t, resp.NothingDue)
	assert.Empty(t, resp.Due)
}

func TestRecordActivityTakenViaAPI(t *testing.T) {
	at := time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)
	router, s := newTestRouter(t, at)

	med := &model.Medication{Name: "Simvastatin", Frequency: schedule.ParseSet([]string{"bedtime"}), Stock: 4}
	require.NoError(t, s.CreateMedication(context.Background(), med))

	w := doJSON(router, "POST", fmt.Sprintf("/api/medications/%d/activity", med.ID),
		gin.H{"action": "taken"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp recordActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Stock)
	assert.False(t, resp.Overdrawn)
	// No worker pool wired in this test: the channel is off.
	assert.Equal(t, "disabled", resp.Notification)

	rows, err := s.ListActivityLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ActionTaken, rows[0].Action)
	// The default note records the period the dose was taken in.
	assert.Equal(t, "bedtime", rows[0].Note)
}

func TestRecordActivityValidation(t *testing.T) {
	router, _ := newTestRouter(t, time.Now())

	w := doJSON(router, "POST", "/api/medications/abc/activity", gin.H{"action": "taken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/medications/1/activity", gin.H{"action": "snoozed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/medications/999/activity", gin.H{"action": "taken"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMedicationRequiresName(t *testing.T) {
	router, _ := newTestRouter(t, time.Now())

	w := doJSON(router, "POST", "/api/medications", gin.H{"dosage": "1 tablet"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/medications", gin.H{
		"name": "Paracetamol", "frequency": []string{"bedtime", "morning", "morning"}, "stock": 20,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var med model.Medication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &med))
	assert.NotZero(t, med.ID)
	assert.Equal(t, schedule.Periods{schedule.Morning, schedule.Bedtime}, med.Frequency)
}

func TestSettingsRoundTripDoesNotEchoToken(t *testing.T) {
	router, _ := newTestRouter(t, time.Now())

	w := doJSON(router, "GET", "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp settingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Configured)

	w = doJSON(router, "PUT", "/api/settings", gin.H{
		"name": "สมศรี", "channel_token": "secret-token", "recipient_id": "U123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Configured)
	assert.Equal(t, "สมศรี", resp.Name)
	assert.NotContains(t, w.Body.String(), "secret-token")
}

func TestScanUnavailableWithoutVisionClient(t *testing.T) {
	router, _ := newTestRouter(t, time.Now())

	req, _ := http.NewRequest("POST", "/api/scan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAppointmentsAndCalendarExport(t *testing.T) {
	router, _ := newTestRouter(t, time.Now())

	w := doJSON(router, "POST", "/api/appointments", gin.H{"doctor": "นพ. สมชาย"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "hospital is required")

	w = doJSON(router, "POST", "/api/appointments", gin.H{
		"hospital": "ศิริราช", "doctor": "นพ. สมชาย", "date": "2567-03-15", "time": "09:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var appt model.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appt))
	// Buddhist-era year is normalized on the way in.
	assert.Equal(t, "2024-03-15", appt.Date)

	w = doJSON(router, "GET", "/api/appointments/calendar.ics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
}
