package services

import (
	"context"
	"time"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	db     *gorm.DB
	log    *zap.Logger
	events EventPublisher
}

func NewProgressService(db *gorm.DB, log *zap.Logger, events EventPublisher) *ProgressService {
	return &ProgressService{db: db, log: log, events: events}
}

type ProgressInput struct {
	Weight            float64    `json:"weight" binding:"required,min=20,max=300"`
	BodyFatPercentage *float64   `json:"body_fat_percentage" binding:"omitempty,min=0,max=100"`
	MuscleMass        *float64   `json:"muscle_mass" binding:"omitempty,gt=0,max=300"`
	RecordedAt        *time.Time `json:"recorded_at"`
	Notes             string     `json:"notes" binding:"max=2000"`
}

type ProgressSummary struct {
	Entries         int64      `json:"entries"`
	StartWeight     *float64   `json:"start_weight"`
	CurrentWeight   float64    `json:"current_weight"`
	Change          float64    `json:"change"`
	TargetWeight    *float64   `json:"target_weight"`
	RemainingTarget *float64   `json:"remaining_to_target"`
	CurrentBMI      float64    `json:"current_bmi"`
	FirstRecordedAt *time.Time `json:"first_recorded_at"`
	LastRecordedAt  *time.Time `json:"last_recorded_at"`
}

// Record stores a measurement with metrics derived from the profile at that weight,
// and makes it the user's current weight.
func (s *ProgressService) Record(ctx context.Context, userID uuid.UUID, in ProgressInput) (*models.UserProgress, error) {
	var rec *models.UserProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			return lookupErr(err, "User")
		}
		u.Weight = in.Weight

		rec = &models.UserProgress{
			UserID:            userID,
			Weight:            in.Weight,
			BMI:               round2(u.BMI()),
			BMR:               round2(u.BMR()),
			TDEE:              round2(u.TDEE()),
			BodyFatPercentage: in.BodyFatPercentage,
			MuscleMass:        in.MuscleMass,
			Notes:             in.Notes,
		}
		if in.RecordedAt != nil {
			rec.RecordedAt = in.RecordedAt.UTC()
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("weight", in.Weight).Error
	})
	if err != nil {
		return nil, err
	}

	publish(s.events, userID, EventProgressRecorded, rec)
	return rec, nil
}

// List returns entries newest first, optionally bounded by from/to (inclusive).
func (s *ProgressService) List(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.UserProgress, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("recorded_at >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("recorded_at <= ?", to.UTC())
	}
	out := []models.UserProgress{}
	return out, q.Order("recorded_at DESC").Find(&out).Error
}

func (s *ProgressService) Latest(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	var p models.UserProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		First(&p).Error
	if err != nil {
		return nil, lookupErr(err, "Progress record")
	}
	return &p, nil
}

func (s *ProgressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.UserProgress{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Progress record")
	}
	return nil
}

func (s *ProgressService) Summary(ctx context.Context, userID uuid.UUID) (*ProgressSummary, error) {
	db := s.db.WithContext(ctx)
	var u models.User
	if err := db.First(&u, "id = ?", userID).Error; err != nil {
		return nil, lookupErr(err, "User")
	}

	sum := &ProgressSummary{
		CurrentWeight: u.Weight,
		CurrentBMI:    round2(u.BMI()),
		TargetWeight:  u.TargetWeight,
	}
	if err := db.Model(&models.UserProgress{}).Where("user_id = ?", userID).Count(&sum.Entries).Error; err != nil {
		return nil, err
	}

	if sum.Entries > 0 {
		var first, last models.UserProgress
		if err := db.Where("user_id = ?", userID).Order("recorded_at ASC").First(&first).Error; err != nil {
			return nil, err
		}
		if err := db.Where("user_id = ?", userID).Order("recorded_at DESC").First(&last).Error; err != nil {
			return nil, err
		}
		start := first.Weight
		sum.StartWeight = &start
		sum.CurrentWeight = last.Weight
		sum.Change = round2(last.Weight - first.Weight)
		sum.CurrentBMI = last.BMI
		sum.FirstRecordedAt = &first.RecordedAt
		sum.LastRecordedAt = &last.RecordedAt
	}

	if u.TargetWeight != nil {
		remaining := round2(*u.TargetWeight - sum.CurrentWeight)
		sum.RemainingTarget = &remaining
	}
	return sum, nil
}

// ParseRange reads optional from/to bounds as RFC3339 or YYYY-MM-DD. A date-only
// bound covers the whole day.
func ParseRange(from, to string) (*time.Time, *time.Time, error) {
	f, err := parseBound(from, dayStart)
	if err != nil {
		return nil, nil, invalid("from must be RFC3339 or YYYY-MM-DD")
	}
	t, err := parseBound(to, dayEnd)
	if err != nil {
		return nil, nil, invalid("to must be RFC3339 or YYYY-MM-DD")
	}
	if f != nil && t != nil && t.Before(*f) {
		return nil, nil, invalid("to must not precede from")
	}
	return f, t, nil
}

func parseBound(s string, widen func(time.Time) time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, err
	}
	d = widen(d)
	return &d, nil
}
