package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkerRepository defines the interface for worker operations.
type WorkerRepository interface {
	// ClaimTask atomically claims the next available task. Returns
	// ErrNoTaskToClaim when nothing is due.
	ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error)

	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, taskID uuid.UUID) error

	// FailTask records the error and either reschedules the task (retries
	// remaining) or marks it failed permanently.
	FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	queues             []string
	pullInterval       time.Duration
	lockTimeout        time.Duration
	maxConcurrentTasks int
	logger             *slog.Logger
}

// WithQueues sets which queues the worker pulls from.
func WithQueues(queues ...string) WorkerOption {
	return func(o *workerOptions) {
		if len(queues) > 0 {
			o.queues = queues
		}
	}
}

// WithPullInterval sets how often the worker polls for tasks.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pullInterval = d
		}
	}
}

// WithMaxConcurrentTasks bounds the number of tasks processed in parallel.
func WithMaxConcurrentTasks(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.maxConcurrentTasks = n
		}
	}
}

// WithWorkerLogger sets the worker's logger.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Worker claims pending tasks and dispatches them to registered handlers.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	queues   []string
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex

	pullInterval time.Duration
	lockTimeout  time.Duration
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorker creates a new task worker.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		queues:             []string{DefaultQueueName},
		pullInterval:       5 * time.Second,
		lockTimeout:        5 * time.Minute,
		maxConcurrentTasks: 1,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		queues:       options.queues,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrentTasks),
		pullInterval: options.pullInterval,
		lockTimeout:  options.lockTimeout,
		logger:       options.logger,
	}, nil
}

// RegisterHandlers registers task handlers by name.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Start begins processing tasks in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return fmt.Errorf("worker already started")
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	go w.run()

	w.logger.Info("worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.sem)))

	return nil
}

// Stop cancels the polling loop and waits for in-flight tasks to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return fmt.Errorf("worker not started")
	}
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()

					if err := w.pullAndProcess(); err != nil && !errors.Is(err, ErrHandlerNotFound) {
						w.logger.Error("failed to process task",
							slog.String("worker_id", w.workerID.String()),
							slog.String("error", err.Error()))
					}
				}()
			default:
				// All slots busy, skip this tick.
			}
		}
	}
}

func (w *Worker) pullAndProcess() error {
	task, err := w.repo.ClaimTask(w.ctx, w.workerID, w.queues, w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoTaskToClaim) {
			return nil
		}
		return fmt.Errorf("failed to claim task: %w", err)
	}
	if task == nil {
		return nil
	}

	return w.processTask(task)
}

func (w *Worker) processTask(task *Task) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in handler: %v", r)
			w.logger.Error("handler panicked",
				slog.String("task_id", task.ID.String()),
				slog.String("task_name", task.TaskName),
				slog.Any("panic", r))
			_ = w.repo.FailTask(w.ctx, task.ID, retErr.Error())
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[task.TaskName]
	w.mu.RUnlock()

	if !ok {
		w.logger.Error("no handler registered for task type",
			slog.String("task_id", task.ID.String()),
			slog.String("task_name", task.TaskName))
		if err := w.repo.FailTask(w.ctx, task.ID, "no handler registered for task type: "+task.TaskName); err != nil {
			return fmt.Errorf("failed to mark task %s as failed: %w", task.ID, err)
		}
		return ErrHandlerNotFound
	}

	// Detach the handler context from the worker lifecycle so graceful
	// shutdown lets in-flight tasks complete.
	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	if err := handler.Handle(ctx, task.Payload); err != nil {
		w.logger.Error("task failed",
			slog.String("task_id", task.ID.String()),
			slog.String("task_name", task.TaskName),
			slog.String("error", err.Error()))
		if failErr := w.repo.FailTask(w.ctx, task.ID, err.Error()); failErr != nil {
			return fmt.Errorf("failed to record task failure: %w", failErr)
		}
		return nil
	}

	if err := w.repo.CompleteTask(w.ctx, task.ID); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	w.logger.Debug("task completed",
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName))

	return nil
}
