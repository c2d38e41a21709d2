package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/models"
	"github.com/noah-isme/coloringbook-api/internal/observability"
	"github.com/noah-isme/coloringbook-api/internal/repository"
)

const csvDelimiter = ';'

var (
	summaryHeader = []string{"Survey", "Subject", "Birthdate", "Page", "Target", "Color", "Correct"}
	fillsHeader   = []string{"Survey", "Page", "Area", "Subject", "Time", "Color"}
)

// ExportService rebuilds results from stored rows for download.
type ExportService interface {
	SurveyResults(ctx context.Context, surveyName string) ([]dto.SubjectSummary, error)
	SurveyResultsCSV(ctx context.Context, surveyName string) ([]byte, error)
	FillsCSV(ctx context.Context, surveyName string, finalOnly bool) ([]byte, error)
}

type exportService struct {
	surveys repository.SurveyRepository
	pages   repository.PageRepository
	actions repository.ActionRepository
	fills   repository.FillRepository
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewExportService constructs the export service.
func NewExportService(surveys repository.SurveyRepository, pages repository.PageRepository, actions repository.ActionRepository, fills repository.FillRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		surveys: surveys,
		pages:   pages,
		actions: actions,
		fills:   fills,
		logger:  logger.With().Str("component", "export_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/coloringbook-api/internal/service/export"),
	}
}

// SurveyResults evaluates every participant of the survey again from the
// stored fills and actions, so exports agree with the mailed summaries.
func (s *exportService) SurveyResults(ctx context.Context, surveyName string) ([]dto.SubjectSummary, error) {
	ctx, span := s.tracer.Start(ctx, "export.survey_results")
	defer span.End()
	span.SetAttributes(attribute.String("survey.name", surveyName))

	survey, err := s.lookupSurvey(ctx, surveyName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "survey lookup failed")
		return nil, err
	}

	pages, err := s.pages.ListBySurvey(ctx, survey.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list survey pages: %w", err)
	}

	participants, err := s.surveys.ListParticipants(ctx, survey.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list participants: %w", err)
	}

	summaries := make([]dto.SubjectSummary, 0, len(participants))
	for _, participant := range participants {
		recorded, err := s.actions.ListBySurveySubject(ctx, survey.ID, participant.SubjectID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("list actions of subject %d: %w", participant.SubjectID, err)
		}

		byPage := groupByPage(recorded)
		evaluations := make([]dto.PageEvaluation, 0, len(pages))
		for _, page := range pages {
			evaluations = append(evaluations, EvaluatePageActions(byPage[page.ID], page))
		}

		subject := participant.Subject
		summaries = append(summaries, Summarize(survey.Name, subject.Name, subject.BirthDate(), evaluations))
	}

	span.SetAttributes(attribute.Int("survey.participants", len(summaries)))
	return summaries, nil
}

func (s *exportService) SurveyResultsCSV(ctx context.Context, surveyName string) ([]byte, error) {
	start := time.Now()
	defer func() {
		observability.ExportDuration().WithLabelValues("results").Observe(time.Since(start).Seconds())
	}()

	summaries, err := s.SurveyResults(ctx, surveyName)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, summaries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FillsCSV exports stored fills, optionally limited to one survey. With
// finalOnly set only the last fill of every area is kept.
func (s *exportService) FillsCSV(ctx context.Context, surveyName string, finalOnly bool) ([]byte, error) {
	label := "fills_raw"
	if finalOnly {
		label = "fills_final"
	}
	ctx, span := s.tracer.Start(ctx, "export."+label)
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ExportDuration().WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	var filter repository.FillFilter
	if surveyName != "" {
		survey, err := s.lookupSurvey(ctx, surveyName)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		filter.SurveyID = &survey.ID
	}

	var (
		fills []models.Fill
		err   error
	)
	if finalOnly {
		fills, err = s.fills.ListFinal(ctx, filter)
	} else {
		fills, err = s.fills.List(ctx, filter)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fill query failed")
		return nil, fmt.Errorf("list fills: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteFillsCSV(&buf, fills); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("export", label).Int("rows", len(fills)).Msg("fills exported")
	return buf.Bytes(), nil
}

func (s *exportService) lookupSurvey(ctx context.Context, name string) (models.Survey, error) {
	survey, err := s.surveys.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Survey{}, ErrSurveyNotFound
	}
	if err != nil {
		return models.Survey{}, fmt.Errorf("lookup survey %q: %w", name, err)
	}
	return survey, nil
}

// groupByPage merges fills and generic actions per page in time order.
// Fills precede actions recorded at the same millisecond.
func groupByPage(recorded repository.RecordedActions) map[uint][]models.PageAction {
	byPage := make(map[uint][]models.PageAction)
	for i := range recorded.Fills {
		fill := &recorded.Fills[i]
		byPage[fill.PageID] = append(byPage[fill.PageID], fill)
	}
	for i := range recorded.Actions {
		action := &recorded.Actions[i]
		byPage[action.PageID] = append(byPage[action.PageID], action)
	}
	for _, actions := range byPage {
		sort.SliceStable(actions, func(a, b int) bool {
			return actions[a].Millis() < actions[b].Millis()
		})
	}
	return byPage
}

// WriteSummaryCSV writes one row per page evaluation followed by a totals
// row for every subject.
func WriteSummaryCSV(w io.Writer, summaries []dto.SubjectSummary) error {
	writer := csv.NewWriter(w)
	writer.Comma = csvDelimiter

	if err := writer.Write(summaryHeader); err != nil {
		return err
	}

	for _, summary := range summaries {
		for _, evaluation := range summary.Evaluations {
			if err := writer.Write([]string{
				summary.SurveyName,
				summary.SubjectName,
				summary.SubjectDOB,
				evaluation.Page,
				evaluation.Target,
				evaluation.Color,
				strconv.Itoa(evaluation.Correct),
			}); err != nil {
				return err
			}
		}

		if err := writer.Write([]string{
			summary.SurveyName,
			summary.SubjectName,
			summary.SubjectDOB,
			strconv.Itoa(summary.TotalPages),
			"Total",
			"",
			fmt.Sprintf("%d (%d%%)", summary.TotalCorrect, summary.PercentageCorrect),
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFillsCSV writes stored fills with their related names resolved.
func WriteFillsCSV(w io.Writer, fills []models.Fill) error {
	writer := csv.NewWriter(w)
	writer.Comma = csvDelimiter

	if err := writer.Write(fillsHeader); err != nil {
		return err
	}

	for _, fill := range fills {
		if err := writer.Write([]string{
			fill.Survey.Name,
			fill.Page.Name,
			fill.Area.Name,
			strconv.FormatUint(uint64(fill.SubjectID), 10),
			strconv.Itoa(fill.Time),
			fill.Color.Code,
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
