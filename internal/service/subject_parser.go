package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/models"
	"github.com/noah-isme/coloringbook-api/internal/repository"
)

// MaxAgeTolerance is roughly the number of days in 100 years.
const MaxAgeTolerance = 36524

// ParseSubject validates the personalia and builds an unsaved Subject.
// Known languages are reused; unknown ones are attached as new, unsaved
// Language values for the persistence layer to register.
func (p *Pipeline) ParseSubject(ctx context.Context, payload dto.SubjectPayload) (models.Subject, error) {
	if payload.Name == "" {
		return models.Subject{}, invalidSubject("name must be non-empty")
	}
	if payload.Birth == "" {
		return models.Subject{}, invalidSubject("birth date must be non-empty")
	}
	if len(payload.Languages) == 0 {
		return models.Subject{}, invalidSubject("native language must be set")
	}

	birth, err := time.Parse(models.DateLayout, strings.TrimSpace(payload.Birth))
	if err != nil {
		return models.Subject{}, invalidSubject(fmt.Sprintf("malformed birth date %q", payload.Birth))
	}

	age := ageInDays(birth, p.now())
	if age > MaxAgeTolerance {
		return models.Subject{}, invalidSubject("age greater than maximum tolerance")
	}
	if age < 0 {
		return models.Subject{}, invalidSubject("negative age")
	}

	subject := models.Subject{
		Name:      payload.Name,
		Numeral:   payload.Numeral.Ptr(),
		Birth:     birth,
		Eyesight:  payload.Eyesight,
		Languages: make([]models.SubjectLanguage, 0, len(payload.Languages)),
	}

	for _, pair := range payload.Languages {
		name := strings.TrimSpace(pair.Name)
		if name == "" || !pair.HasLevel {
			return models.Subject{}, invalidSubject("incomplete language data")
		}

		language, err := p.languages.FindByName(ctx, name)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			language = models.Language{Name: name}
		case err != nil:
			return models.Subject{}, fmt.Errorf("lookup language %q: %w", name, err)
		}

		subject.Languages = append(subject.Languages, models.SubjectLanguage{
			LanguageID: language.ID,
			Level:      pair.Level,
			Language:   language,
		})
	}

	return subject, nil
}

// ageInDays counts calendar days between birth and the date of now.
func ageInDays(birth, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	born := time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(born).Hours() / 24)
}
