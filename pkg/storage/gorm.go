package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// ReportRecord is the relational row for one stored report. The full
// report travels as a JSON document; the scalar columns exist so callers
// can list and filter without decoding.
type ReportRecord struct {
	GameID    string    `gorm:"primaryKey;size:255"`
	MoveCount int       `gorm:"not null"`
	Depth     int       `gorm:"not null"`
	Document  []byte    `gorm:"type:bytes;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the necessary tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&ReportRecord{})
}

func (s *GormStore) Set(ctx context.Context, gameID string, report *core.AnalysisReport) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return err
	}
	rec := ReportRecord{
		GameID:    gameID,
		MoveCount: len(report.Moves),
		Depth:     report.Settings.Depth,
		Document:  doc,
	}
	return s.db.WithContext(ctx).Save(&rec).Error
}

func (s *GormStore) Get(ctx context.Context, gameID string) (*core.AnalysisReport, error) {
	var rec ReportRecord
	err := s.db.WithContext(ctx).First(&rec, "game_id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var report core.AnalysisReport
	if err := json.Unmarshal(rec.Document, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *GormStore) Has(ctx context.Context, gameID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&ReportRecord{}).
		Where("game_id = ?", gameID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) Delete(ctx context.Context, gameID string) error {
	return s.db.WithContext(ctx).Delete(&ReportRecord{}, "game_id = ?", gameID).Error
}

func (s *GormStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&ReportRecord{}).
		Order("game_id ASC").
		Pluck("game_id", &ids).Error
	return ids, err
}
