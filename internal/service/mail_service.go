package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/middleware"
	"github.com/noah-isme/coloringbook-api/internal/models"
)

// ResultsMailSubject is the subject line of every result notification.
const ResultsMailSubject = "ColoringBook - nieuwe resultaten opgeslagen"

// ResultsAttachmentName is the file name of the attached summary CSV.
const ResultsAttachmentName = "results.csv"

//go:embed templates/results_email.html
var mailTemplates embed.FS

var resultsTemplate = template.Must(template.ParseFS(mailTemplates, "templates/results_email.html"))

// MailService turns stored results into queued notification mails.
type MailService interface {
	NotifyResults(ctx context.Context, survey models.Survey, summaries []dto.SubjectSummary) (int, error)
}

type mailService struct {
	queue  MailQueue
	logger zerolog.Logger
	now    func() time.Time
}

// NewMailService constructs the result mail composer.
func NewMailService(queue MailQueue, logger zerolog.Logger) MailService {
	return &mailService{
		queue:  queue,
		logger: logger.With().Str("component", "mail_service").Logger(),
		now:    time.Now,
	}
}

type resultsMailView struct {
	Subject   string
	Survey    string
	Summaries []dto.SubjectSummary
}

// NotifyResults enqueues one mail per survey recipient and returns how many
// jobs were queued. Surveys without recipients are skipped.
func (s *mailService) NotifyResults(ctx context.Context, survey models.Survey, summaries []dto.SubjectSummary) (int, error) {
	recipients := survey.Recipients()
	if len(recipients) == 0 || len(summaries) == 0 {
		return 0, nil
	}

	html, attachment, err := ComposeResultsMail(survey.Name, summaries)
	if err != nil {
		return 0, err
	}

	correlation := middleware.CorrelationIDFromContext(ctx)
	queued := 0
	for _, recipient := range recipients {
		job := MailJob{
			ID:            uuid.NewString(),
			Recipient:     recipient,
			Subject:       ResultsMailSubject,
			HTML:          html,
			Attachment:    attachment,
			CorrelationID: correlation,
			EnqueuedAt:    s.now().UTC(),
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			return queued, fmt.Errorf("enqueue mail for %s: %w", recipient, err)
		}
		queued++
	}

	s.logger.Info().
		Str("survey", survey.Name).
		Int("recipients", queued).
		Int("subjects", len(summaries)).
		Str("correlation_id", correlation).
		Msg("result mails queued")
	return queued, nil
}

// ComposeResultsMail renders the HTML body and the CSV attachment.
func ComposeResultsMail(surveyName string, summaries []dto.SubjectSummary) (string, []byte, error) {
	var body bytes.Buffer
	view := resultsMailView{Subject: ResultsMailSubject, Survey: surveyName, Summaries: summaries}
	if err := resultsTemplate.Execute(&body, view); err != nil {
		return "", nil, fmt.Errorf("render results mail: %w", err)
	}

	var attachment bytes.Buffer
	if err := WriteSummaryCSV(&attachment, summaries); err != nil {
		return "", nil, fmt.Errorf("render results csv: %w", err)
	}

	return body.String(), attachment.Bytes(), nil
}
