package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/models"
	"github.com/noah-isme/coloringbook-api/internal/observability"
	"github.com/noah-isme/coloringbook-api/internal/repository"
)

// Pipeline parses and evaluates survey submissions. It only builds
// in-memory records; persisting them is left to the caller.
type Pipeline struct {
	languages repository.LanguageRepository
	areas     repository.AreaRepository
	colors    repository.ColorRepository
	pages     repository.PageRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPipeline constructs the evaluation pipeline.
func NewPipeline(languages repository.LanguageRepository, areas repository.AreaRepository, colors repository.ColorRepository, pages repository.PageRepository, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		languages: languages,
		areas:     areas,
		colors:    colors,
		pages:     pages,
		logger:    logger.With().Str("component", "evaluation_pipeline").Logger(),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for age validation.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// SubjectResult is a fully evaluated, not yet persisted submission.
type SubjectResult struct {
	Subject models.Subject
	Pages   []models.Page
	Actions [][]models.PageAction
	Summary dto.SubjectSummary
}

// SubjectOutcome pairs a batch entry with either its result or its error.
type SubjectOutcome struct {
	Index       int
	SubjectName string
	Result      *SubjectResult
	Err         error
}

// EvaluateSubmission runs the subject parser, action parser and page
// evaluator over one subject's submission. Any failure aborts the subject.
func (p *Pipeline) EvaluateSubmission(ctx context.Context, survey models.Survey, submission dto.SubjectSubmission) (SubjectResult, error) {
	subject, err := p.ParseSubject(ctx, submission.Subject)
	if err != nil {
		return SubjectResult{}, err
	}

	pages, err := p.pages.ListBySurvey(ctx, survey.ID)
	if err != nil {
		return SubjectResult{}, fmt.Errorf("list survey pages: %w", err)
	}

	if len(submission.Results) != len(pages) {
		return SubjectResult{}, fmt.Errorf("%w: got %d results for %d pages", ErrPageCountMismatch, len(submission.Results), len(pages))
	}

	evaluations := make([]dto.PageEvaluation, 0, len(pages))
	recorded := make([][]models.PageAction, 0, len(pages))
	for i, page := range pages {
		actions, err := p.ParseActions(ctx, survey, page, subject, submission.Results[i])
		if err != nil {
			return SubjectResult{}, err
		}
		evaluation := EvaluatePageActions(actions, page)
		observability.PageEvaluations().WithLabelValues(correctnessLabel(evaluation.Correct)).Inc()

		recorded = append(recorded, actions)
		evaluations = append(evaluations, evaluation)
	}

	return SubjectResult{
		Subject: subject,
		Pages:   pages,
		Actions: recorded,
		Summary: Summarize(survey.Name, subject.Name, subject.BirthDate(), evaluations),
	}, nil
}

// CollectSummaries evaluates every subject independently and in order. A
// failing subject is reported in its outcome and does not affect the rest.
func (p *Pipeline) CollectSummaries(ctx context.Context, survey models.Survey, submissions []dto.SubjectSubmission) []SubjectOutcome {
	outcomes := make([]SubjectOutcome, 0, len(submissions))
	for index, submission := range submissions {
		outcome := SubjectOutcome{Index: index, SubjectName: submission.Subject.Name}
		result, err := p.EvaluateSubmission(ctx, survey, submission)
		if err != nil {
			p.logger.Warn().Err(err).Int("subject_index", index).Str("survey", survey.Name).Msg("subject evaluation failed")
			outcome.Err = err
		} else {
			outcome.Result = &result
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Summarize totals a subject's page evaluations.
func Summarize(surveyName, subjectName, subjectDOB string, evaluations []dto.PageEvaluation) dto.SubjectSummary {
	totalCorrect := 0
	for _, evaluation := range evaluations {
		totalCorrect += evaluation.Correct
	}

	return dto.SubjectSummary{
		SurveyName:        surveyName,
		SubjectName:       subjectName,
		SubjectDOB:        subjectDOB,
		Evaluations:       evaluations,
		TotalPages:        len(evaluations),
		TotalCorrect:      totalCorrect,
		PercentageCorrect: percentage(totalCorrect, len(evaluations)),
	}
}

// percentage rounds half away from zero, so 1 of 8 pages yields 13.
func percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func correctnessLabel(correct int) string {
	if correct == 1 {
		return "correct"
	}
	return "incorrect"
}
