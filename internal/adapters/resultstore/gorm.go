package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// ResultRecord is one internship's published result. The whole ranked list
// lives in a single JSON column so replacing it is a single-row write.
type ResultRecord struct {
	InternshipID string `gorm:"primaryKey;size:64"`
	Version      uint64 `gorm:"not null"`
	RunID        string `gorm:"size:64"`
	Strategy     string `gorm:"size:32"`
	ComputedAt   time.Time
	Entries      datatypes.JSON `gorm:"type:json"`
}

// TableName implements gorm's tabler.
func (ResultRecord) TableName() string { return "allocation_results" }

// GormStore keeps results in a SQL database.
type GormStore struct {
	db *gorm.DB
}

// NewGorm creates a store backed by db.
func NewGorm(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the results table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&ResultRecord{}); err != nil {
		return fmt.Errorf("migrate result store: %w", err)
	}
	return nil
}

// Backend implements Store.
func (s *GormStore) Backend() string { return BackendGorm }

// Publish implements Store. The version check and the replacement are one
// conditional upsert, so concurrent publishers cannot interleave.
func (s *GormStore) Publish(ctx context.Context, r model.AllocationResult) (err error) {
	start := time.Now()
	defer func() { observePublish(BackendGorm, start, err) }()

	if err := validate(r); err != nil {
		return err
	}
	entries := r.Entries
	if entries == nil {
		entries = []model.ScoredCandidate{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	rec := ResultRecord{
		InternshipID: r.InternshipID,
		Version:      r.Version,
		RunID:        r.RunID,
		Strategy:     r.Strategy,
		ComputedAt:   r.ComputedAt.UTC(),
		Entries:      datatypes.JSON(raw),
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "internship_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"version", "run_id", "strategy", "computed_at", "entries"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "allocation_results.version < excluded.version"},
			}},
		}).Create(&rec)
		if res.Error != nil {
			return fmt.Errorf("publish result %s: %w", r.InternshipID, res.Error)
		}
		if res.RowsAffected == 0 {
			var cur ResultRecord
			if err := tx.Select("version").First(&cur, "internship_id = ?", r.InternshipID).Error; err != nil {
				return fmt.Errorf("publish result %s: %w", r.InternshipID, err)
			}
			return staleError(r, cur.Version)
		}
		return nil
	})
}

// GetPublished implements Store.
func (s *GormStore) GetPublished(ctx context.Context, internshipID string) (model.AllocationResult, error) {
	var rec ResultRecord
	err := s.db.WithContext(ctx).First(&rec, "internship_id = ?", internshipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AllocationResult{}, fmt.Errorf("internship %s: %w", internshipID, ErrNoResult)
	}
	if err != nil {
		return model.AllocationResult{}, fmt.Errorf("read result %s: %w", internshipID, err)
	}
	out := model.AllocationResult{
		InternshipID: rec.InternshipID,
		Version:      rec.Version,
		RunID:        rec.RunID,
		Strategy:     rec.Strategy,
		ComputedAt:   rec.ComputedAt.UTC(),
	}
	if err := json.Unmarshal(rec.Entries, &out.Entries); err != nil {
		return model.AllocationResult{}, fmt.Errorf("decode result %s: %w", internshipID, err)
	}
	return out, nil
}
