package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/middleware"
	"github.com/noah-isme/coloringbook-api/internal/models"
	"github.com/noah-isme/coloringbook-api/internal/observability"
	"github.com/noah-isme/coloringbook-api/internal/repository"
)

// SubmissionService evaluates and stores finished surveys.
type SubmissionService interface {
	Submit(ctx context.Context, surveyName string, submission dto.SubjectSubmission) (dto.SubmissionResponse, error)
	SubmitBatch(ctx context.Context, surveyName string, submissions []dto.SubjectSubmission) (dto.BatchSubmissionResponse, error)
}

type submissionService struct {
	surveys     repository.SurveyRepository
	submissions repository.SubmissionRepository
	pipeline    *Pipeline
	cache       *redis.Client
	events      EventPublisher
	mail        MailService
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	dedupeTTL   time.Duration
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. cache may
// be nil, which disables the duplicate payload guard.
func NewSubmissionService(
	surveys repository.SurveyRepository,
	submissions repository.SubmissionRepository,
	pipeline *Pipeline,
	cache *redis.Client,
	events EventPublisher,
	mail MailService,
	validate *validator.Validate,
	dedupeTTL time.Duration,
	logger zerolog.Logger,
) SubmissionService {
	if dedupeTTL <= 0 {
		dedupeTTL = 10 * time.Minute
	}
	return &submissionService{
		surveys:     surveys,
		submissions: submissions,
		pipeline:    pipeline,
		cache:       cache,
		events:      events,
		mail:        mail,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		dedupeTTL:   dedupeTTL,
		tracer:      otel.Tracer("github.com/noah-isme/coloringbook-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, surveyName string, submission dto.SubjectSubmission) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit")
	defer span.End()
	span.SetAttributes(attribute.String("survey.name", surveyName))

	if err := s.validator.Struct(submission.Evaluation); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		observability.Submissions().WithLabelValues("invalid").Inc()
		return dto.SubmissionResponse{}, err
	}

	survey, err := s.lookupSurvey(ctx, surveyName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "survey lookup failed")
		return dto.SubmissionResponse{}, err
	}

	release, err := s.claim(ctx, span, survey.Name, submission)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	result, err := s.pipeline.EvaluateSubmission(ctx, survey, submission)
	if err != nil {
		release()
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		observability.Submissions().WithLabelValues("invalid").Inc()
		return dto.SubmissionResponse{}, err
	}

	subjectID, err := s.store(ctx, survey, submission.Evaluation, &result)
	if err != nil {
		release()
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.Submissions().WithLabelValues("error").Inc()
		return dto.SubmissionResponse{}, err
	}

	observability.Submissions().WithLabelValues("stored").Inc()
	span.SetAttributes(attribute.Int("subject.id", int(subjectID)))

	s.announce(ctx, survey, subjectID, result.Summary)
	s.notify(ctx, survey, []dto.SubjectSummary{result.Summary})

	return dto.SubmissionResponse{SubjectID: subjectID, Summary: result.Summary}, nil
}

func (s *submissionService) SubmitBatch(ctx context.Context, surveyName string, submissions []dto.SubjectSubmission) (dto.BatchSubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit_batch")
	defer span.End()
	span.SetAttributes(
		attribute.String("survey.name", surveyName),
		attribute.Int("batch.size", len(submissions)),
	)

	survey, err := s.lookupSurvey(ctx, surveyName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "survey lookup failed")
		return dto.BatchSubmissionResponse{}, err
	}

	release, err := s.claim(ctx, span, survey.Name, submissions)
	if err != nil {
		return dto.BatchSubmissionResponse{}, err
	}

	response := dto.BatchSubmissionResponse{
		Survey:   survey.Name,
		Outcomes: make([]dto.SubjectOutcomeResponse, 0, len(submissions)),
	}
	stored := make([]dto.SubjectSummary, 0, len(submissions))

	for _, outcome := range s.pipeline.CollectSummaries(ctx, survey, submissions) {
		entry := dto.SubjectOutcomeResponse{Index: outcome.Index, Subject: outcome.SubjectName}

		err := outcome.Err
		var subjectID uint
		if err == nil {
			err = s.validator.Struct(submissions[outcome.Index].Evaluation)
		}
		if err == nil {
			subjectID, err = s.store(ctx, survey, submissions[outcome.Index].Evaluation, outcome.Result)
		}

		if err != nil {
			entry.Status = dto.OutcomeFailed
			entry.Error = err.Error()
			response.Failed++
			observability.Submissions().WithLabelValues("invalid").Inc()
			response.Outcomes = append(response.Outcomes, entry)
			continue
		}

		summary := outcome.Result.Summary
		entry.Status = dto.OutcomeStored
		entry.SubjectID = subjectID
		entry.Summary = &summary
		response.Stored++
		observability.Submissions().WithLabelValues("stored").Inc()
		response.Outcomes = append(response.Outcomes, entry)

		stored = append(stored, summary)
		s.announce(ctx, survey, subjectID, summary)
	}

	if response.Stored == 0 {
		release()
	}

	span.SetAttributes(
		attribute.Int("batch.stored", response.Stored),
		attribute.Int("batch.failed", response.Failed),
	)

	s.notify(ctx, survey, stored)
	return response, nil
}

func (s *submissionService) lookupSurvey(ctx context.Context, name string) (models.Survey, error) {
	survey, err := s.surveys.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Survey{}, ErrSurveyNotFound
	}
	if err != nil {
		return models.Survey{}, fmt.Errorf("lookup survey %q: %w", name, err)
	}
	return survey, nil
}

// claim reserves the payload checksum so a resent request is rejected. The
// returned release func frees the checksum again when the submission fails.
func (s *submissionService) claim(ctx context.Context, span trace.Span, surveyName string, payload interface{}) (func(), error) {
	noop := func() {}
	if s.cache == nil {
		return noop, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return noop, err
	}

	checksum := payloadChecksum(surveyName, raw)
	span.SetAttributes(attribute.String("submission.checksum", checksum))

	key := fmt.Sprintf("coloringbook:dedupe:%s", checksum)
	ok, err := s.cache.SetNX(ctx, key, 1, s.dedupeTTL).Result()
	if err != nil {
		span.RecordError(err)
		return noop, err
	}
	if !ok {
		span.SetStatus(codes.Error, "duplicate submission")
		observability.Submissions().WithLabelValues("duplicate").Inc()
		return noop, ErrDuplicateSubmission
	}

	return func() {
		if err := s.cache.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			s.logger.Warn().Err(err).Str("checksum", checksum).Msg("failed to release submission checksum")
		}
	}, nil
}

// store persists one evaluated subject and returns its new ID.
func (s *submissionService) store(ctx context.Context, survey models.Survey, evaluation dto.EvaluationPayload, result *SubjectResult) (uint, error) {
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		return 0, fmt.Errorf("encode summary: %w", err)
	}

	record := repository.SubmissionRecord{
		Subject: &result.Subject,
		Participation: &models.SurveySubject{
			SurveyID:   survey.ID,
			Difficulty: evaluation.Difficulty.Ptr(),
			Topic:      s.sanitize(evaluation.Topic),
			Comments:   s.sanitize(evaluation.Comments),
			Summary:    datatypes.JSON(summary),
		},
	}

	for _, actions := range result.Actions {
		for _, action := range actions {
			switch recorded := action.(type) {
			case *models.Fill:
				record.Fills = append(record.Fills, recorded)
			case *models.Action:
				record.Actions = append(record.Actions, recorded)
			}
		}
	}

	if err := s.submissions.Store(ctx, record); err != nil {
		return 0, fmt.Errorf("store submission: %w", err)
	}

	s.logger.Info().
		Str("survey", survey.Name).
		Uint("subject_id", result.Subject.ID).
		Int("fills", len(record.Fills)).
		Int("actions", len(record.Actions)).
		Int("percentage_correct", result.Summary.PercentageCorrect).
		Msg("submission stored")
	return result.Subject.ID, nil
}

func (s *submissionService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *submissionService) announce(ctx context.Context, survey models.Survey, subjectID uint, summary dto.SubjectSummary) {
	if s.events == nil {
		return
	}
	event := SubmissionEvent{
		Survey:            survey.Name,
		SubjectID:         subjectID,
		SubjectName:       summary.SubjectName,
		TotalPages:        summary.TotalPages,
		TotalCorrect:      summary.TotalCorrect,
		PercentageCorrect: summary.PercentageCorrect,
		CorrelationID:     middleware.CorrelationIDFromContext(ctx),
		StoredAt:          s.now().UTC(),
	}
	if err := s.events.PublishSubmission(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("subject_id", subjectID).Msg("failed to publish submission event")
	}
}

func (s *submissionService) notify(ctx context.Context, survey models.Survey, summaries []dto.SubjectSummary) {
	if s.mail == nil || len(summaries) == 0 {
		return
	}
	if _, err := s.mail.NotifyResults(ctx, survey, summaries); err != nil {
		s.logger.Error().Err(err).Str("survey", survey.Name).Msg("failed to queue result mail")
	}
}

func payloadChecksum(surveyName string, payload []byte) string {
	hasher := sha256.New()
	hasher.Write([]byte(surveyName))
	hasher.Write([]byte("|"))
	hasher.Write(payload)
	return hex.EncodeToString(hasher.Sum(nil))
}
