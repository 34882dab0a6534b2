package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is used when no queue is specified.
const DefaultQueueName = "default"

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a one-time task in the queue.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Queue       string     `json:"queue"`
	TaskName    string     `json:"task_name"`
	Payload     []byte     `json:"payload,omitempty"`
	Status      TaskStatus `json:"status"`
	RetryCount  int8       `json:"retry_count"`
	MaxRetries  int8       `json:"max_retries"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID `json:"locked_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
