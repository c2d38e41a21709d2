package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// SurveyRepository provides survey lookups and participation listings.
type SurveyRepository interface {
	GetByName(ctx context.Context, name string) (models.Survey, error)
	ListParticipants(ctx context.Context, surveyID uint) ([]models.SurveySubject, error)
}

type surveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository constructs a survey repository.
func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &surveyRepository{db: db}
}

func (r *surveyRepository) GetByName(ctx context.Context, name string) (models.Survey, error) {
	var survey models.Survey
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&survey).Error; err != nil {
		return models.Survey{}, translateNotFound(err)
	}
	return survey, nil
}

func (r *surveyRepository) ListParticipants(ctx context.Context, surveyID uint) ([]models.SurveySubject, error) {
	var participants []models.SurveySubject
	if err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Subject.Languages.Language").
		Where("survey_id = ?", surveyID).
		Order("created_at ASC").
		Order("subject_id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}
