package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository defines the interface for task creation.
type EnqueuerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Enqueuer adds one-time tasks to the queue.
type Enqueuer struct {
	repo         EnqueuerRepository
	defaultQueue string
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	queue      string
	taskName   string
	maxRetries int8
	delay      time.Duration
}

// WithQueue routes the task to a named queue.
func WithQueue(queue string) EnqueueOption {
	return func(o *enqueueOptions) {
		if queue != "" {
			o.queue = queue
		}
	}
}

// WithTaskName overrides the payload-derived task name.
func WithTaskName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.taskName = name
		}
	}
}

// WithMaxRetries sets how many times a failed task is retried. Zero means
// the task runs at most once.
func WithMaxRetries(n int8) EnqueueOption {
	return func(o *enqueueOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithDelay schedules the task for later execution.
func WithDelay(d time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if d > 0 {
			o.delay = d
		}
	}
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(repo EnqueuerRepository) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	return &Enqueuer{
		repo:         repo,
		defaultQueue: DefaultQueueName,
	}, nil
}

// Enqueue marshals the payload and stores a pending task.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) error {
	if payload == nil {
		return ErrPayloadNil
	}

	options := &enqueueOptions{
		queue:      e.defaultQueue,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(options)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	taskName := options.taskName
	if taskName == "" {
		taskName = qualifiedStructName(payload)
	}

	now := time.Now()
	task := &Task{
		ID:          uuid.New(),
		Queue:       options.queue,
		TaskName:    taskName,
		Payload:     payloadBytes,
		Status:      TaskStatusPending,
		MaxRetries:  options.maxRetries,
		ScheduledAt: now.Add(options.delay),
		CreatedAt:   now,
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create task %q in queue %q: %w", task.TaskName, task.Queue, err)
	}

	return nil
}
