package model

import "time"

// Action is the kind of adherence event recorded against a medication.
type Action string

const (
	ActionTaken   Action = "taken"
	ActionSkipped Action = "skipped"
	ActionMissed  Action = "missed"
)

// Valid reports whether a is a known adherence action.
func (a Action) Valid() bool {
	switch a {
	case ActionTaken, ActionSkipped, ActionMissed:
		return true
	}
	return false
}

// ActivityLog is one append-only adherence ledger entry. Entries are never
// updated or deleted.
type ActivityLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	MedID     int64     `gorm:"index;not null" json:"med_id"`
	Action    Action    `gorm:"size:16;not null" json:"action"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Note      string    `gorm:"size:512" json:"note"`

	// Associations
	Medication Medication `gorm:"foreignKey:MedID;constraint:OnDelete:CASCADE" json:"-"`
}
