package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements the queue repository interfaces in process memory.
// Suitable for single-node deployments and tests; tasks do not survive a
// restart, which is acceptable for best-effort work such as email dispatch.
type MemoryStorage struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task
}

// NewMemoryStorage creates a new in-memory storage implementation.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[uuid.UUID]*Task),
	}
}

// CreateTask implements EnqueuerRepository.
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Clone to prevent external modifications.
	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy
	return nil
}

// ClaimTask implements WorkerRepository. The oldest due pending task wins;
// expired locks are reclaimed.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task

	for _, task := range ms.tasks {
		if task.Status != TaskStatusPending && !lockExpired(task, now) {
			continue
		}
		if !contains(queues, task.Queue) {
			continue
		}
		if task.ScheduledAt.After(now) {
			continue
		}
		if best == nil || task.ScheduledAt.Before(best.ScheduledAt) {
			best = task
		}
	}

	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockedUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &lockedUntil
	best.LockedBy = &workerID

	claimed := *best
	return &claimed, nil
}

// CompleteTask implements WorkerRepository.
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrNoTaskToClaim
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil
	return nil
}

// FailTask implements WorkerRepository: reschedules when retries remain,
// otherwise marks the task failed permanently.
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrNoTaskToClaim
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	if task.RetryCount > task.MaxRetries {
		now := time.Now()
		task.Status = TaskStatusFailed
		task.ProcessedAt = &now
		return nil
	}

	// Exponential backoff between attempts.
	task.Status = TaskStatusPending
	task.ScheduledAt = time.Now().Add(time.Duration(task.RetryCount) * time.Second)
	return nil
}

// Task returns a copy of a stored task, for tests and inspection.
func (ms *MemoryStorage) Task(taskID uuid.UUID) (Task, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

func lockExpired(task *Task, now time.Time) bool {
	return task.Status == TaskStatusProcessing && task.LockedUntil != nil && task.LockedUntil.Before(now)
}

func contains(queues []string, queue string) bool {
	for _, q := range queues {
		if q == queue {
			return true
		}
	}
	return false
}
