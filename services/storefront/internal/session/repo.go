package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Record struct {
	VisitorID string    `gorm:"primaryKey;size:64"`
	Kind      string    `gorm:"primaryKey;size:16"`
	Token     string    `gorm:"not null"`
	Role      string    `gorm:"not null"`
	SubjectID string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (Record) TableName() string { return "sessions" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Record{})
}

type GormStore struct {
	DB  *gorm.DB
	TTL time.Duration
	Now func() time.Time
}

func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{DB: db, TTL: ttl, Now: time.Now}
}

func (r *GormStore) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Save writes s, replacing any earlier session of the same kind for the visitor.
func (r *GormStore) Save(ctx context.Context, s *Session) error {
	if s.VisitorID == "" || !s.Kind.Valid() {
		return fmt.Errorf("save session: visitor and kind are required")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}
	rec := Record{
		VisitorID: s.VisitorID,
		Kind:      string(s.Kind),
		Token:     s.Token,
		Role:      s.Role,
		SubjectID: s.SubjectID,
		CreatedAt: s.CreatedAt.UTC(),
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *GormStore) Load(ctx context.Context, visitorID string, kind Kind) (*Session, error) {
	var rec Record
	err := r.DB.WithContext(ctx).
		Where("visitor_id = ? AND kind = ?", visitorID, string(kind)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s := &Session{
		VisitorID: rec.VisitorID,
		Kind:      Kind(rec.Kind),
		Token:     rec.Token,
		Role:      rec.Role,
		SubjectID: rec.SubjectID,
		CreatedAt: rec.CreatedAt,
	}
	if s.Expired(r.now(), r.TTL) {
		if err := r.Clear(ctx, visitorID, kind); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}
	return s, nil
}

func (r *GormStore) Clear(ctx context.Context, visitorID string, kind Kind) error {
	err := r.DB.WithContext(ctx).
		Where("visitor_id = ? AND kind = ?", visitorID, string(kind)).
		Delete(&Record{}).Error
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
