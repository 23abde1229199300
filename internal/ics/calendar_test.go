package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"yamor-backend/internal/model"
)

func TestBuildCalendar(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Bangkok")
	assert.NoError(t, err)

	appointments := []model.Appointment{
		{ID: 1, Hospital: "ศิริราช", Doctor: "นพ. สมชาย", Date: "2024-03-15", Time: "09:00", Note: "งดน้ำ", CreatedAt: time.Now()},
		{ID: 2, Hospital: "รามาธิบดี", Date: "not-a-date", Time: "??", CreatedAt: time.Now()},
	}

	out := BuildCalendar(appointments, loc)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "appointment-1@yamor")
	assert.Contains(t, out, "นัดหมอ: ศิริราช")
	// Malformed records are skipped, not fatal.
	assert.NotContains(t, out, "appointment-2@yamor")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
}

func TestBuildCalendarEmpty(t *testing.T) {
	out := BuildCalendar(nil, time.UTC)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
