package model

import (
	"time"

	"yamor-backend/internal/schedule"
)

// Medication represents one registered medicine with its dosing schedule
// and remaining stock.
type Medication struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"size:256;not null" json:"name"`
	ImagePath string           `gorm:"size:512" json:"image_path"`
	Dosage    string           `gorm:"size:128" json:"dosage"`
	Frequency schedule.Periods `gorm:"type:text;not null" json:"frequency"`
	Stock     int              `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
}
