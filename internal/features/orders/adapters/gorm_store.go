package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ozon-order-bot/internal/features/orders/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeenPostingModel is the database row for a notified posting.
// Rows are never deleted; retention is unbounded.
type SeenPostingModel struct {
	// PostingNumber is the unique posting identifier.
	PostingNumber string `gorm:"primaryKey;column:posting_number"`
	// Status is the FBS status recorded at notification time.
	Status string `gorm:"column:status;not null"`
	// NotifiedAt is when the notification was sent.
	NotifiedAt time.Time `gorm:"column:notified_at;not null"`
}

// TableName overrides the GORM table name.
func (SeenPostingModel) TableName() string {
	return "seen_postings"
}

// GormOrderStore implements the OrderStore port using GORM.
type GormOrderStore struct {
	db *gorm.DB
}

// NewGormOrderStore creates a new GormOrderStore and migrates its schema.
func NewGormOrderStore(db *gorm.DB) (*GormOrderStore, error) {
	if err := db.AutoMigrate(&SeenPostingModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate seen postings schema: %w", err)
	}
	return &GormOrderStore{db: db}, nil
}

// HasSeen reports whether the posting number was already notified.
func (s *GormOrderStore) HasSeen(ctx context.Context, postingNumber string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&SeenPostingModel{}).
		Where("posting_number = ?", postingNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check posting %s: %w", postingNumber, err)
	}
	return count > 0, nil
}

// SeenStatus returns the status recorded at notification time.
func (s *GormOrderStore) SeenStatus(ctx context.Context, postingNumber string) (domain.Status, bool, error) {
	var row SeenPostingModel
	err := s.db.WithContext(ctx).
		Where("posting_number = ?", postingNumber).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load posting %s: %w", postingNumber, err)
	}
	return domain.Status(row.Status), true, nil
}

// MarkSeen records that the posting was notified with the given status.
// Marking an already-seen posting updates its status, so the call is
// idempotent per posting number.
func (s *GormOrderStore) MarkSeen(ctx context.Context, postingNumber string, status domain.Status) error {
	row := SeenPostingModel{
		PostingNumber: postingNumber,
		Status:        string(status),
		NotifiedAt:    time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "posting_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "notified_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to mark posting %s seen: %w", postingNumber, err)
	}
	return nil
}

// Count returns the number of postings notified so far.
func (s *GormOrderStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&SeenPostingModel{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count seen postings: %w", err)
	}
	return count, nil
}
