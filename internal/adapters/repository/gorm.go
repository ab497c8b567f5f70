package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// CandidateRecord is the candidates table.
type CandidateRecord struct {
	ID           string         `gorm:"primaryKey;size:64"`
	Name         string         `gorm:"size:255"`
	Education    string         `gorm:"size:255"`
	Skills       datatypes.JSON `gorm:"type:json"`
	Location     string         `gorm:"size:128"`
	Projects     string         `gorm:"type:text"`
	Applications int
	Applied      []ApplicationRecord `gorm:"foreignKey:CandidateID"`
}

// TableName implements gorm's tabler.
func (CandidateRecord) TableName() string { return "candidates" }

// InternshipRecord is the internships table.
type InternshipRecord struct {
	ID                string         `gorm:"primaryKey;size:64"`
	Title             string         `gorm:"size:255"`
	Company           string         `gorm:"size:255"`
	RequiredSkills    datatypes.JSON `gorm:"type:json"`
	EducationKeywords datatypes.JSON `gorm:"type:json"`
	Location          string         `gorm:"size:128"`
	Capacity          int
	Status            string `gorm:"size:32;index"`
}

// TableName implements gorm's tabler.
func (InternshipRecord) TableName() string { return "internships" }

// ApplicationRecord links a candidate to an internship they applied to.
type ApplicationRecord struct {
	CandidateID  string `gorm:"primaryKey;size:64"`
	InternshipID string `gorm:"primaryKey;size:64;index"`
}

// TableName implements gorm's tabler.
func (ApplicationRecord) TableName() string { return "applications" }

// GormRepository reads candidates and internships from a SQL database.
type GormRepository struct {
	db *gorm.DB
}

// NewGorm creates a repository backed by db.
func NewGorm(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the repository tables.
func (r *GormRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&CandidateRecord{}, &InternshipRecord{}, &ApplicationRecord{}); err != nil {
		return fmt.Errorf("migrate repository: %w", err)
	}
	return nil
}

// Seed upserts the given internships and candidates, including their
// applications, in one transaction.
func (r *GormRepository) Seed(ctx context.Context, internships []model.Internship, candidates []model.Candidate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range internships {
			rec := toInternshipRecord(in)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
				return fmt.Errorf("seed internship %s: %w", in.ID, err)
			}
		}
		for _, c := range candidates {
			rec := toCandidateRecord(c)
			if err := tx.Omit("Applied").Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
				return fmt.Errorf("seed candidate %s: %w", c.ID, err)
			}
			if err := tx.Where("candidate_id = ?", c.ID).Delete(&ApplicationRecord{}).Error; err != nil {
				return fmt.Errorf("reset applications of %s: %w", c.ID, err)
			}
			if len(rec.Applied) == 0 {
				continue
			}
			if err := tx.Create(&rec.Applied).Error; err != nil {
				return fmt.Errorf("seed applications of %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// GetInternship implements Repository.
func (r *GormRepository) GetInternship(ctx context.Context, id string) (model.Internship, error) {
	var rec InternshipRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return model.Internship{}, translate("get internship "+id, err)
	}
	return fromInternshipRecord(rec)
}

// ListInternships implements Repository.
func (r *GormRepository) ListInternships(ctx context.Context, f InternshipFilter) ([]model.Internship, error) {
	var recs []InternshipRecord
	q := r.db.WithContext(ctx)
	if f.ActiveOnly {
		q = q.Where("LOWER(status) IN ?", []string{string(model.InternshipActive), "open"})
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, translate("list internships", err)
	}
	out := make([]model.Internship, 0, len(recs))
	for _, rec := range recs {
		in, err := fromInternshipRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	sortInternships(out)
	return out, nil
}

// GetCandidates implements Repository. The applicant filter runs in SQL.
func (r *GormRepository) GetCandidates(ctx context.Context, f CandidateFilter) ([]model.Candidate, error) {
	var recs []CandidateRecord
	q := r.db.WithContext(ctx).Preload("Applied")
	if f.InternshipID != "" {
		applicants := r.db.Model(&ApplicationRecord{}).Select("candidate_id").Where("internship_id = ?", f.InternshipID)
		q = q.Where("id IN (?)", applicants)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, translate("get candidates", err)
	}
	out := make([]model.Candidate, 0, len(recs))
	for _, rec := range recs {
		c, err := fromCandidateRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sortCandidates(out)
	return out, nil
}

func toInternshipRecord(in model.Internship) InternshipRecord {
	return InternshipRecord{
		ID:                in.ID,
		Title:             in.Title,
		Company:           in.Company,
		RequiredSkills:    mustJSON(in.RequiredSkills),
		EducationKeywords: mustJSON(in.EducationKeywords),
		Location:          in.Location,
		Capacity:          in.Capacity,
		Status:            string(in.State),
	}
}

func fromInternshipRecord(rec InternshipRecord) (model.Internship, error) {
	in := model.Internship{
		ID:       rec.ID,
		Title:    rec.Title,
		Company:  rec.Company,
		Location: rec.Location,
		Capacity: rec.Capacity,
		State:    model.ParseInternshipState(rec.Status),
	}
	if err := decodeList(rec.RequiredSkills, &in.RequiredSkills); err != nil {
		return model.Internship{}, fmt.Errorf("internship %s skills: %w", rec.ID, err)
	}
	if err := decodeList(rec.EducationKeywords, &in.EducationKeywords); err != nil {
		return model.Internship{}, fmt.Errorf("internship %s keywords: %w", rec.ID, err)
	}
	return in, nil
}

func toCandidateRecord(c model.Candidate) CandidateRecord {
	rec := CandidateRecord{
		ID:           c.ID,
		Name:         c.Name,
		Education:    c.Education,
		Skills:       mustJSON(c.Skills),
		Location:     c.Location,
		Projects:     c.Projects,
		Applications: c.Applications,
	}
	for _, id := range c.InternshipIDs {
		rec.Applied = append(rec.Applied, ApplicationRecord{CandidateID: c.ID, InternshipID: id})
	}
	return rec
}

func fromCandidateRecord(rec CandidateRecord) (model.Candidate, error) {
	c := model.Candidate{
		ID:           rec.ID,
		Name:         rec.Name,
		Education:    rec.Education,
		Location:     rec.Location,
		Projects:     rec.Projects,
		Applications: rec.Applications,
	}
	if err := decodeList(rec.Skills, &c.Skills); err != nil {
		return model.Candidate{}, fmt.Errorf("candidate %s skills: %w", rec.ID, err)
	}
	for _, a := range rec.Applied {
		c.InternshipIDs = append(c.InternshipIDs, a.InternshipID)
	}
	slices.SortFunc(c.InternshipIDs, model.CompareIDs)
	return c, nil
}

func mustJSON(list []string) datatypes.JSON {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return datatypes.JSON(b)
}

func decodeList(raw datatypes.JSON, dst *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
