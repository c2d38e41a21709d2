package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// PageRepository lists the pages of a survey.
type PageRepository interface {
	ListBySurvey(ctx context.Context, surveyID uint) ([]models.Page, error)
}

type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository constructs a page repository.
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

// ListBySurvey returns the survey's pages in presentation order, with the
// drawing, sound and expectations loaded.
func (r *pageRepository) ListBySurvey(ctx context.Context, surveyID uint) ([]models.Page, error) {
	var pages []models.Page
	if err := r.db.WithContext(ctx).
		Joins("JOIN survey_pages ON survey_pages.page_id = pages.id").
		Where("survey_pages.survey_id = ?", surveyID).
		Order("survey_pages.ordering ASC").
		Preload("Drawing").
		Preload("Sound").
		Preload("Expectations.Area").
		Preload("Expectations.Color").
		Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}
