package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// FillFilter narrows fill queries.
type FillFilter struct {
	SurveyID  *uint
	SubjectID *uint
}

// FillRepository reads stored fills for exports and re-evaluation.
type FillRepository interface {
	List(ctx context.Context, filter FillFilter) ([]models.Fill, error)
	ListFinal(ctx context.Context, filter FillFilter) ([]models.Fill, error)
}

type fillRepository struct {
	db *gorm.DB
}

// NewFillRepository constructs a fill repository.
func NewFillRepository(db *gorm.DB) FillRepository {
	return &fillRepository{db: db}
}

func (r *fillRepository) baseQuery(ctx context.Context, filter FillFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Fill{}).
		Preload("Survey").
		Preload("Page").
		Preload("Area").
		Preload("Subject").
		Preload("Color")

	if filter.SurveyID != nil {
		query = query.Where("fills.survey_id = ?", *filter.SurveyID)
	}
	if filter.SubjectID != nil {
		query = query.Where("fills.subject_id = ?", *filter.SubjectID)
	}

	return query.
		Order("fills.survey_id ASC").
		Order("fills.subject_id ASC").
		Order("fills.page_id ASC").
		Order("fills.time ASC").
		Order("fills.area_id ASC")
}

func (r *fillRepository) List(ctx context.Context, filter FillFilter) ([]models.Fill, error) {
	var fills []models.Fill
	if err := r.baseQuery(ctx, filter).Find(&fills).Error; err != nil {
		return nil, err
	}
	return fills, nil
}

// ListFinal keeps only the latest fill of every area per subject and page,
// which is the color the area ended up with.
func (r *fillRepository) ListFinal(ctx context.Context, filter FillFilter) ([]models.Fill, error) {
	final := r.db.WithContext(ctx).Model(&models.Fill{}).
		Select("survey_id, page_id, area_id, subject_id, MAX(fills.time) AS final_time").
		Group("survey_id, page_id, area_id, subject_id")

	var fills []models.Fill
	if err := r.baseQuery(ctx, filter).
		Joins("JOIN (?) AS final ON final.survey_id = fills.survey_id AND final.page_id = fills.page_id AND final.area_id = fills.area_id AND final.subject_id = fills.subject_id AND final.final_time = fills.time", final).
		Find(&fills).Error; err != nil {
		return nil, err
	}
	return fills, nil
}
