package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/models"
	"github.com/noah-isme/coloringbook-api/internal/repository"
	"github.com/noah-isme/coloringbook-api/pkg/mailer"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

var (
	red  = models.Color{ID: 1, Code: "#ff0000", Name: "red"}
	blue = models.Color{ID: 2, Code: "#0000ff", Name: "blue"}

	door   = models.Area{ID: 11, Name: "door", DrawingID: 1}
	window = models.Area{ID: 12, Name: "window", DrawingID: 1}
	fish   = models.Area{ID: 21, Name: "fish", DrawingID: 2}
	dog    = models.Area{ID: 22, Name: "dog", DrawingID: 2}
	plant  = models.Area{ID: 23, Name: "plant", DrawingID: 2}
)

func pilotSurvey() models.Survey {
	return models.Survey{ID: 1, Name: "pilot", Duration: 6000, EmailAddress: "lab@example.org"}
}

func pilotPages() []models.Page {
	return []models.Page{
		{
			ID: 1, Name: "p1", DrawingID: 1,
			Drawing:      models.Drawing{ID: 1, Name: "house"},
			Expectations: []models.Expectation{{PageID: 1, AreaID: door.ID, ColorID: red.ID, Here: true, Area: door, Color: red}},
		},
		{
			ID: 2, Name: "p2", DrawingID: 2,
			Drawing:      models.Drawing{ID: 2, Name: "aquarium"},
			Expectations: []models.Expectation{{PageID: 2, AreaID: plant.ID, ColorID: blue.ID, Here: true, Area: plant, Color: blue}},
		},
	}
}

func fill(area models.Area, color models.Color, millis int) dto.ActionPayload {
	return dto.ActionPayload{Action: models.ActionFill, Target: area.Name, Color: color.Code, Time: dto.NewLooseInt(millis)}
}

func bobSubmission() dto.SubjectSubmission {
	return dto.SubjectSubmission{
		Subject: dto.SubjectPayload{
			Name:      "Bob",
			Birth:     "2000-01-01",
			Languages: []dto.LanguageLevel{{Name: "German", Level: 10, HasLevel: true}},
		},
		Results: [][]dto.ActionPayload{
			{fill(window, blue, 800), fill(door, red, 1200)},
			{fill(dog, red, 500), fill(fish, blue, 900)},
		},
		Evaluation: dto.EvaluationPayload{Difficulty: dto.NewLooseInt(2), Topic: "kleuren"},
	}
}

type languageRepoStub struct {
	known map[string]models.Language
}

func (s *languageRepoStub) FindByName(ctx context.Context, name string) (models.Language, error) {
	if language, ok := s.known[name]; ok {
		return language, nil
	}
	return models.Language{}, repository.ErrNotFound
}

func (s *languageRepoStub) FindOrCreate(ctx context.Context, name string) (models.Language, error) {
	return s.FindByName(ctx, name)
}

type areaRepoStub struct {
	areas []models.Area
}

func (s *areaRepoStub) FindInDrawing(ctx context.Context, drawingID uint, name string) (models.Area, error) {
	var matches []models.Area
	for _, area := range s.areas {
		if area.DrawingID == drawingID && area.Name == name {
			matches = append(matches, area)
		}
	}
	return exactlyOne(matches)
}

type colorRepoStub struct {
	colors []models.Color
}

func (s *colorRepoStub) FindByCode(ctx context.Context, code string) (models.Color, error) {
	var matches []models.Color
	for _, color := range s.colors {
		if color.Code == code {
			matches = append(matches, color)
		}
	}
	return exactlyOne(matches)
}

func exactlyOne[T any](matches []T) (T, error) {
	var zero T
	switch len(matches) {
	case 0:
		return zero, repository.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return zero, repository.ErrAmbiguous
	}
}

type pageRepoStub struct {
	pages []models.Page
}

func (s *pageRepoStub) ListBySurvey(ctx context.Context, surveyID uint) ([]models.Page, error) {
	return s.pages, nil
}

type surveyRepoStub struct {
	surveys      map[string]models.Survey
	participants []models.SurveySubject
}

func (s *surveyRepoStub) GetByName(ctx context.Context, name string) (models.Survey, error) {
	if survey, ok := s.surveys[name]; ok {
		return survey, nil
	}
	return models.Survey{}, repository.ErrNotFound
}

func (s *surveyRepoStub) ListParticipants(ctx context.Context, surveyID uint) ([]models.SurveySubject, error) {
	return s.participants, nil
}

type submissionRepoStub struct {
	mu      sync.Mutex
	records []repository.SubmissionRecord
	nextID  uint
	err     error
}

func (s *submissionRepoStub) Store(ctx context.Context, record repository.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextID++
	record.Subject.ID = s.nextID
	s.records = append(s.records, record)
	return nil
}

type eventPublisherStub struct {
	events []SubmissionEvent
}

func (s *eventPublisherStub) PublishSubmission(ctx context.Context, event SubmissionEvent) error {
	s.events = append(s.events, event)
	return nil
}

type senderStub struct {
	sent     []mailer.Message
	failures int
}

func (s *senderStub) Send(ctx context.Context, msg mailer.Message) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestPipeline() *Pipeline {
	return NewPipeline(
		&languageRepoStub{known: map[string]models.Language{"Dutch": {ID: 5, Name: "Dutch"}}},
		&areaRepoStub{areas: []models.Area{door, window, fish, dog, plant}},
		&colorRepoStub{colors: []models.Color{red, blue}},
		&pageRepoStub{pages: pilotPages()},
		testLogger(),
	).WithClock(func() time.Time { return fixedNow })
}
