package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamor-backend/internal/model"
)

// ErrMedicationNotFound is returned when a ledger write references a
// medication id that does not exist.
var ErrMedicationNotFound = errors.New("medication not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateMedication(ctx context.Context, med *model.Medication) error
	ListMedications(ctx context.Context) ([]model.Medication, error)

	RecordActivity(ctx context.Context, medID int64, action model.Action, note string) (*ActivityResult, error)
	ListActivityLogs(ctx context.Context) ([]ActivityLogRow, error)

	SaveCaregiverSettings(ctx context.Context, settings *model.CaregiverSettings) error
	GetCaregiverSettings(ctx context.Context) (*model.CaregiverSettings, error)

	CreateAppointment(ctx context.Context, appt *model.Appointment) error
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for handlers that compose their own reads.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateMedication inserts a new medication record and fills in its id.
func (s *gormStore) CreateMedication(ctx context.Context, med *model.Medication) error {
	if err := s.db.WithContext(ctx).Create(med).Error; err != nil {
		return fmt.Errorf("failed to create medication %q: %w", med.Name, err)
	}
	return nil
}

// ListMedications returns all medications in insertion order.
func (s *gormStore) ListMedications(ctx context.Context) ([]model.Medication, error) {
	var meds []model.Medication
	if err := s.db.WithContext(ctx).Order("id").Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

// ActivityResult reports the outcome of a ledger write.
type ActivityResult struct {
	LogID          int64
	MedicationName string
	StockRemaining int
	// Overdrawn is set when a taken event hit a medication whose stock was
	// already zero. The event is still logged; stock stays at zero.
	Overdrawn bool
}

// RecordActivity appends a ledger entry and, for a taken action, decrements
// the medication's stock. Both writes happen in one transaction: either the
// entry and the decrement are both visible, or neither is.
func (s *gormStore) RecordActivity(ctx context.Context, medID int64, action model.Action, note string) (*ActivityResult, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("unknown action %q", action)
	}

	var result ActivityResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var med model.Medication
		if err := tx.First(&med, medID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("medication %d: %w", medID, ErrMedicationNotFound)
			}
			return fmt.Errorf("failed to load medication %d: %w", medID, err)
		}

		entry := model.ActivityLog{
			MedID:     medID,
			Action:    action,
			Timestamp: time.Now().UTC(),
			Note:      note,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append activity log for medication %d: %w", medID, err)
		}
		result.LogID = entry.ID
		result.MedicationName = med.Name
		result.StockRemaining = med.Stock

		if action != model.ActionTaken {
			return nil
		}

		// Clamp at zero: an empty bottle is reported as overdrawn instead of
		// letting stock go negative.
		res := tx.Model(&model.Medication{}).
			Where("id = ? AND stock > 0", medID).
			UpdateColumn("stock", gorm.Expr("stock - 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement stock for medication %d: %w", medID, res.Error)
		}
		if res.RowsAffected == 0 {
			result.StockRemaining = 0
			result.Overdrawn = true
		} else {
			result.StockRemaining = med.Stock - 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ActivityLogRow is one ledger entry joined with its medication's name.
type ActivityLogRow struct {
	ID        int64        `json:"id"`
	MedID     int64        `json:"med_id"`
	MedName   string       `json:"med_name"`
	Action    model.Action `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
	Note      string       `json:"note"`
}

// ListActivityLogs returns the full ledger, newest first.
func (s *gormStore) ListActivityLogs(ctx context.Context) ([]ActivityLogRow, error) {
	var rows []ActivityLogRow
	err := s.db.WithContext(ctx).
		Table("activity_logs").
		Select("activity_logs.id, activity_logs.med_id, medications.name AS med_name, activity_logs.action, activity_logs.timestamp, activity_logs.note").
		Joins("JOIN medications ON medications.id = activity_logs.med_id").
		Order("activity_logs.timestamp DESC, activity_logs.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return rows, nil
}

// SaveCaregiverSettings upserts the single settings row.
func (s *gormStore) SaveCaregiverSettings(ctx context.Context, settings *model.CaregiverSettings) error {
	settings.ID = model.SettingsRowID
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "channel_token", "recipient_id", "updated_at"}),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("failed to save caregiver settings: %w", err)
	}
	return nil
}

// GetCaregiverSettings returns the settings row, or nil when none was saved yet.
func (s *gormStore) GetCaregiverSettings(ctx context.Context) (*model.CaregiverSettings, error) {
	var settings model.CaregiverSettings
	err := s.db.WithContext(ctx).First(&settings, model.SettingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load caregiver settings: %w", err)
	}
	return &settings, nil
}

// CreateAppointment inserts a legacy appointment record.
func (s *gormStore) CreateAppointment(ctx context.Context, appt *model.Appointment) error {
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("failed to create appointment at %q: %w", appt.Hospital, err)
	}
	return nil
}

// ListAppointments returns all appointments, most recent date first.
func (s *gormStore) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	if err := s.db.WithContext(ctx).Order("date DESC, time ASC").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}
