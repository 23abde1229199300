package model

import "time"

// Appointment is the legacy hospital-visit record. It coexists with
// Medication as an independent collection; there is no migration between
// the two.
type Appointment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Hospital  string    `gorm:"size:256;not null" json:"hospital"`
	Doctor    string    `gorm:"size:256" json:"doctor"`
	Date      string    `gorm:"size:16" json:"date"` // YYYY-MM-DD
	Time      string    `gorm:"size:8" json:"time"`  // HH:MM, 24-hour
	Note      string    `gorm:"size:512" json:"note"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
