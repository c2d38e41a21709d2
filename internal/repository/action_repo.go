package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// RecordedActions holds what one subject did on the pages of one survey.
type RecordedActions struct {
	Fills   []models.Fill
	Actions []models.Action
}

// ActionRepository reads back stored fills and generic actions.
type ActionRepository interface {
	ListBySurveySubject(ctx context.Context, surveyID, subjectID uint) (RecordedActions, error)
}

type actionRepository struct {
	db *gorm.DB
}

// NewActionRepository constructs an action repository.
func NewActionRepository(db *gorm.DB) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) ListBySurveySubject(ctx context.Context, surveyID, subjectID uint) (RecordedActions, error) {
	var recorded RecordedActions

	if err := r.db.WithContext(ctx).
		Preload("Area").
		Preload("Color").
		Where("survey_id = ? AND subject_id = ?", surveyID, subjectID).
		Order("time ASC").
		Order("area_id ASC").
		Find(&recorded.Fills).Error; err != nil {
		return RecordedActions{}, err
	}

	if err := r.db.WithContext(ctx).
		Where("survey_id = ? AND subject_id = ?", surveyID, subjectID).
		Order("time ASC").
		Find(&recorded.Actions).Error; err != nil {
		return RecordedActions{}, err
	}

	return recorded, nil
}
