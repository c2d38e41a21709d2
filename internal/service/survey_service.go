package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/repository"
)

// SurveyService serves survey definitions to the browser client.
type SurveyService interface {
	Definition(ctx context.Context, name string) (dto.SurveyDefinitionResponse, error)
}

type surveyService struct {
	surveys repository.SurveyRepository
	pages   repository.PageRepository
	logger  zerolog.Logger
}

// NewSurveyService constructs a survey service.
func NewSurveyService(surveys repository.SurveyRepository, pages repository.PageRepository, logger zerolog.Logger) SurveyService {
	return &surveyService{
		surveys: surveys,
		pages:   pages,
		logger:  logger.With().Str("component", "survey_service").Logger(),
	}
}

func (s *surveyService) Definition(ctx context.Context, name string) (dto.SurveyDefinitionResponse, error) {
	survey, err := s.surveys.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.SurveyDefinitionResponse{}, ErrSurveyNotFound
		}
		return dto.SurveyDefinitionResponse{}, fmt.Errorf("lookup survey %q: %w", name, err)
	}

	pages, err := s.pages.ListBySurvey(ctx, survey.ID)
	if err != nil {
		return dto.SurveyDefinitionResponse{}, fmt.Errorf("list survey pages: %w", err)
	}

	return dto.NewSurveyDefinitionResponse(survey, pages), nil
}
