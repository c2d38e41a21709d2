package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/middleware"
	"github.com/noah-isme/coloringbook-api/internal/observability"
	"github.com/noah-isme/coloringbook-api/pkg/mailer"
)

// MailWorker drains the mail queue in the background.
type MailWorker struct {
	queue      MailQueue
	sender     mailer.Sender
	from       string
	maxRetries int
	interval   time.Duration
	logger     zerolog.Logger
}

// NewMailWorker constructs a worker. A failed job is retried maxRetries
// times before it moves to the dead letter list.
func NewMailWorker(queue MailQueue, sender mailer.Sender, from string, maxRetries int, interval time.Duration, logger zerolog.Logger) *MailWorker {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &MailWorker{
		queue:      queue,
		sender:     sender,
		from:       from,
		maxRetries: maxRetries,
		interval:   interval,
		logger:     logger.With().Str("component", "mail_worker").Logger(),
	}
}

// Run polls the queue until ctx is cancelled.
func (w *MailWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("mail worker started")
	for {
		w.drain(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info().Msg("mail worker stopped")
			return
		case <-ticker.C:
		}
	}
}

type deliveryStatus int

const (
	deliveryIdle deliveryStatus = iota
	deliverySent
	deliveryRetry
	deliveryDead
)

// drain delivers queued jobs until the queue is empty or a delivery fails.
// A failed job waits for the next tick before it is tried again.
func (w *MailWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		status, err := w.process(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("mail queue unavailable")
			return
		}
		if status == deliveryIdle || status == deliveryRetry {
			return
		}
	}
}

// ProcessNext delivers one job. It returns false when the queue was empty.
func (w *MailWorker) ProcessNext(ctx context.Context) (bool, error) {
	status, err := w.process(ctx)
	return status != deliveryIdle, err
}

func (w *MailWorker) process(ctx context.Context) (deliveryStatus, error) {
	job, ok, err := w.queue.Dequeue(ctx)
	if err != nil || !ok {
		return deliveryIdle, err
	}

	jobCtx := middleware.ContextWithCorrelation(ctx, job.CorrelationID)
	logger := w.logger.With().
		Str("job_id", job.ID).
		Str("recipient", job.Recipient).
		Str("correlation_id", job.CorrelationID).
		Int("attempts", job.Attempts).
		Logger()

	msg := mailer.Message{
		From:    w.from,
		To:      []string{job.Recipient},
		Subject: job.Subject,
		HTML:    []byte(job.HTML),
	}
	if len(job.Attachment) > 0 {
		msg.Attachments = []mailer.Attachment{{
			Filename:    ResultsAttachmentName,
			ContentType: "text/csv; charset=utf-8",
			Content:     job.Attachment,
		}}
	}

	sendErr := w.sender.Send(jobCtx, msg)
	if sendErr == nil {
		observability.MailDeliveries().WithLabelValues("sent").Inc()
		logger.Info().Msg("result mail delivered")
		return deliverySent, nil
	}

	job.Attempts++
	if job.Attempts > w.maxRetries {
		observability.MailDeliveries().WithLabelValues("dead_letter").Inc()
		logger.Error().Err(sendErr).Msg("result mail exhausted retries")
		return deliveryDead, w.queue.DeadLetter(ctx, job)
	}

	observability.MailDeliveries().WithLabelValues("retry").Inc()
	logger.Warn().Err(sendErr).Msg("result mail delivery failed, requeued")
	return deliveryRetry, w.queue.Enqueue(ctx, job)
}
