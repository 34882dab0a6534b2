// Package queue provides a repository-agnostic background task queue used to
// decouple slow or unreliable work (outbound email) from the request path.
//
// The package is organised around two components:
//
//   - Enqueuer — adds one-time tasks to the queue
//   - Worker   — claims pending tasks and dispatches them to registered Handlers
//
// Components interact only through small repository interfaces, so the queue
// can be backed by any storage engine. MemoryStorage is the bundled
// implementation for single-node deployments.
//
// Task names are derived from the payload's struct type, so the enqueueing
// side and the handling side agree without shared constants:
//
//	type WelcomeEmailTask struct{ Email string }
//
//	enq.Enqueue(ctx, WelcomeEmailTask{Email: "user@example.com"})
//
//	worker.RegisterHandlers(queue.NewTaskHandler(func(ctx context.Context, t WelcomeEmailTask) error {
//	    return sender.Send(ctx, t.Email)
//	}))
//
// A failed task is retried with backoff up to its MaxRetries; enqueue with
// WithMaxRetries(0) for strictly best-effort, run-once semantics.
package queue
