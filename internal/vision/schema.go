package vision

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"yamor-backend/internal/schedule"
)

// MedicineDraft is the structured data extracted from a medicine label.
// Every field is optional on the wire; absent or null fields stay empty.
type MedicineDraft struct {
	MedicineName string           `json:"medicine_name"`
	Dosage       string           `json:"dosage"`
	Frequency    schedule.Periods `json:"frequency"`
	Indication   string           `json:"indication"`
	Warning      string           `json:"warning"`
}

// AppointmentDraft is the structured data extracted from an appointment slip.
type AppointmentDraft struct {
	HospitalName    string `json:"hospital_name"`
	DoctorName      string `json:"doctor_name"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Note            string `json:"note"`
}

// buddhistEraOffset converts a Buddhist Era year to the Gregorian calendar.
const buddhistEraOffset = 543

var dateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// NormalizeDate validates an extracted YYYY-MM-DD date and converts Buddhist
// Era years to Gregorian. The year is treated as Buddhist when the caller
// says so, or when it is implausibly far in the future (more than 400 years
// past the current Gregorian year). A date that cannot be parsed yields ""
// so the caller can fall back to its own default.
func NormalizeDate(raw string, buddhist bool) string {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	year, _ := strconv.Atoi(m[1])
	if buddhist || year > time.Now().Year()+400 {
		year -= buddhistEraOffset
	}

	normalized := fmt.Sprintf("%04d-%s-%s", year, m[2], m[3])
	if _, err := time.Parse("2006-01-02", normalized); err != nil {
		return ""
	}
	return normalized
}

// NormalizeTime validates an extracted 24-hour HH:MM time, yielding "" when
// it cannot be parsed.
func NormalizeTime(raw string) string {
	s := strings.TrimSpace(raw)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}

// stripCodeFence removes a markdown code fence wrapping from a model
// response, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
