package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubmissionEvent is published on the event bus after a subject was stored.
type SubmissionEvent struct {
	Survey            string    `json:"survey"`
	SubjectID         uint      `json:"subject_id"`
	SubjectName       string    `json:"subject_name"`
	TotalPages        int       `json:"total_pages"`
	TotalCorrect      int       `json:"total_correct"`
	PercentageCorrect int       `json:"percentage_correct"`
	CorrelationID     string    `json:"correlation_id,omitempty"`
	StoredAt          time.Time `json:"stored_at"`
}

// EventPublisher announces stored submissions to other services.
type EventPublisher interface {
	PublishSubmission(ctx context.Context, event SubmissionEvent) error
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSEventPublisher publishes events on subject. A nil connection
// turns publishing into a no-op so the API runs without a bus.
func NewNATSEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	return &natsEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "submission_events").Logger(),
	}
}

func (p *natsEventPublisher) PublishSubmission(ctx context.Context, event SubmissionEvent) error {
	if p.conn == nil || p.subject == "" {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return err
	}

	p.logger.Debug().
		Str("survey", event.Survey).
		Uint("subject_id", event.SubjectID).
		Msg("submission event published")
	return nil
}
