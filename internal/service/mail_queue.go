package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MailJob is one queued result mail for a single recipient.
type MailJob struct {
	ID            string    `json:"id"`
	Recipient     string    `json:"recipient"`
	Subject       string    `json:"subject"`
	HTML          string    `json:"html"`
	Attachment    []byte    `json:"attachment,omitempty"`
	Attempts      int       `json:"attempts"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}

// MailQueue buffers mail jobs between the API and the delivery worker.
type MailQueue interface {
	Enqueue(ctx context.Context, job MailJob) error
	// Dequeue returns false when the queue is empty.
	Dequeue(ctx context.Context) (MailJob, bool, error)
	DeadLetter(ctx context.Context, job MailJob) error
}

type redisMailQueue struct {
	client  *redis.Client
	key     string
	deadKey string
}

// NewRedisMailQueue stores jobs in a Redis list, pushed on the left and
// popped on the right. Exhausted jobs go to "<key>:dead".
func NewRedisMailQueue(client *redis.Client, key string) MailQueue {
	if key == "" {
		key = "coloringbook:mail"
	}
	return &redisMailQueue{client: client, key: key, deadKey: key + ":dead"}
}

func (q *redisMailQueue) Enqueue(ctx context.Context, job MailJob) error {
	return q.push(ctx, q.key, job)
}

func (q *redisMailQueue) DeadLetter(ctx context.Context, job MailJob) error {
	return q.push(ctx, q.deadKey, job)
}

func (q *redisMailQueue) push(ctx context.Context, key string, job MailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode mail job: %w", err)
	}
	return q.client.LPush(ctx, key, payload).Err()
}

func (q *redisMailQueue) Dequeue(ctx context.Context) (MailJob, bool, error) {
	payload, err := q.client.RPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return MailJob{}, false, nil
	}
	if err != nil {
		return MailJob{}, false, err
	}

	var job MailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return MailJob{}, false, fmt.Errorf("decode mail job: %w", err)
	}
	return job, true, nil
}

// MemoryMailQueue is a process local queue used when Redis is not configured.
type MemoryMailQueue struct {
	mu   sync.Mutex
	jobs []MailJob
	dead []MailJob
}

// NewMemoryMailQueue constructs an empty in-memory queue.
func NewMemoryMailQueue() *MemoryMailQueue {
	return &MemoryMailQueue{}
}

func (q *MemoryMailQueue) Enqueue(ctx context.Context, job MailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *MemoryMailQueue) Dequeue(ctx context.Context) (MailJob, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return MailJob{}, false, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, true, nil
}

func (q *MemoryMailQueue) DeadLetter(ctx context.Context, job MailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, job)
	return nil
}

// Len reports the number of pending jobs.
func (q *MemoryMailQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// DeadLetters returns a copy of the exhausted jobs.
func (q *MemoryMailQueue) DeadLetters() []MailJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]MailJob(nil), q.dead...)
}
