package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"yamor-backend/internal/model"
)

// defaultDuration is assumed for appointments, which carry no end time.
const defaultDuration = time.Hour

// BuildCalendar renders the appointment list as an iCalendar document, one
// event per appointment. Records whose date or time cannot be parsed are
// skipped rather than failing the export.
func BuildCalendar(appointments []model.Appointment, loc *time.Location) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	for _, appt := range appointments {
		start, err := time.ParseInLocation("2006-01-02 15:04", appt.Date+" "+appt.Time, loc)
		if err != nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("appointment-%d@yamor", appt.ID))
		event.SetCreatedTime(appt.CreatedAt)
		event.SetDtStampTime(appt.CreatedAt)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(defaultDuration))
		event.SetSummary(fmt.Sprintf("นัดหมอ: %s", appt.Hospital))
		event.SetLocation(appt.Hospital)
		event.SetDescription(fmt.Sprintf("แพทย์: %s\nหมายเหตุ: %s", appt.Doctor, appt.Note))
	}

	return cal.Serialize()
}
