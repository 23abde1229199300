package model

import "time"

// SettingsRowID is the fixed primary key of the single settings row.
const SettingsRowID int64 = 1

// CaregiverSettings is the singleton caregiver/patient record. It is
// overwritten on every save; no history is kept.
type CaregiverSettings struct {
	ID           int64     `gorm:"primaryKey" json:"-"`
	Name         string    `gorm:"size:256" json:"name"`
	ChannelToken string    `gorm:"size:512" json:"channel_token"`
	RecipientID  string    `gorm:"size:256" json:"recipient_id"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Configured reports whether the push channel can be used. Either credential
// missing disables notification.
func (s *CaregiverSettings) Configured() bool {
	return s != nil && s.ChannelToken != "" && s.RecipientID != ""
}
