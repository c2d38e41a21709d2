package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/models"
	"github.com/noah-isme/coloringbook-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

const defaultSurveyDuration = 6000

// SeedService loads survey material.
type SeedService interface {
	SeedCatalog(ctx context.Context, token string, req dto.CatalogSeedRequest) (repository.CatalogCounts, error)
}

type seedService struct {
	catalog   repository.CatalogRepository
	validator *validator.Validate
	enabled   bool
	token     string
	trusted   bool
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(catalog repository.CatalogRepository, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		catalog:   catalog,
		validator: validate,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

// NewLocalSeedService constructs a seeder for operator tooling that runs next to
// the database. It ignores the enabled flag and the token.
func NewLocalSeedService(catalog repository.CatalogRepository, validate *validator.Validate, logger zerolog.Logger) SeedService {
	return &seedService{
		catalog:   catalog,
		validator: validate,
		trusted:   true,
		logger:    logger.With().Str("component", "seed_service").Bool("local", true).Logger(),
	}
}

func (s *seedService) SeedCatalog(ctx context.Context, token string, req dto.CatalogSeedRequest) (repository.CatalogCounts, error) {
	if !s.trusted {
		if !s.enabled {
			return repository.CatalogCounts{}, ErrSeedDisabled
		}
		if !s.validateToken(token) {
			return repository.CatalogCounts{}, ErrSeedUnauthorized
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return repository.CatalogCounts{}, err
	}

	counts, err := s.catalog.Seed(ctx, toCatalog(req))
	if err != nil {
		return repository.CatalogCounts{}, err
	}

	s.logger.Info().
		Int("surveys", counts.Surveys).
		Int("pages", counts.Pages).
		Int("expectations", counts.Expectations).
		Msg("catalog seeded")
	return counts, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

func toCatalog(req dto.CatalogSeedRequest) repository.Catalog {
	catalog := repository.Catalog{
		Languages: req.Languages,
		Sounds:    req.Sounds,
	}

	for _, color := range req.Colors {
		catalog.Colors = append(catalog.Colors, models.Color{
			Code: strings.TrimSpace(color.Code),
			Name: strings.TrimSpace(color.Name),
		})
	}

	for _, drawing := range req.Drawings {
		catalog.Drawings = append(catalog.Drawings, repository.DrawingSpec{Name: drawing.Name, Areas: drawing.Areas})
	}

	for _, page := range req.Pages {
		spec := repository.PageSpec{
			Name:     page.Name,
			Drawing:  page.Drawing,
			Text:     page.Text,
			Sound:    page.Sound,
			Language: page.Language,
		}
		for _, expectation := range page.Expectations {
			spec.Expectations = append(spec.Expectations, repository.ExpectationSpec{
				Area:       expectation.Area,
				ColorCode:  strings.TrimSpace(expectation.Color),
				Here:       expectation.Here,
				Motivation: expectation.Motivation,
			})
		}
		catalog.Pages = append(catalog.Pages, spec)
	}

	for _, survey := range req.Surveys {
		duration := survey.Duration
		if duration == 0 {
			duration = defaultSurveyDuration
		}
		catalog.Surveys = append(catalog.Surveys, repository.SurveySpec{
			Survey: models.Survey{
				Name:         survey.Name,
				Begin:        survey.Begin,
				End:          survey.End,
				Information:  survey.Information,
				Simultaneous: survey.Simultaneous,
				Duration:     duration,
				EmailAddress: survey.EmailAddress,
			},
			Language: survey.Language,
			Pages:    survey.Pages,
		})
	}

	return catalog
}
