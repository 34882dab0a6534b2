package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type (
	// Handler processes one named task type.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	// TaskHandlerFunc is the typed function a Handler wraps.
	TaskHandlerFunc[T any] func(ctx context.Context, payload T) error
)

// NewTaskHandler wraps a typed handler function. The task name defaults to
// the qualified struct name of the payload type, so enqueuer and worker agree
// on it without shared constants.
func NewTaskHandler[T any](handler TaskHandlerFunc[T]) Handler {
	var payload T
	return &taskHandler[T]{
		name:    qualifiedStructName(payload),
		handler: handler,
	}
}

type taskHandler[T any] struct {
	name    string
	handler TaskHandlerFunc[T]
}

func (h *taskHandler[T]) Name() string {
	return h.name
}

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return h.handler(ctx, t)
}

func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
