package worker

import (
	"context"

	audit "volunteerhub/pkg/platform/audit"
)

// Worker drains an inbox of audit events into a store. A failed append is
// reported to onError and the worker keeps going.
type Worker struct {
	store   audit.Store
	inbox   <-chan audit.Event
	onError func(audit.Event, error)
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, onError func(audit.Event, error)) *Worker {
	if onError == nil {
		onError = func(audit.Event, error) {}
	}
	return &Worker{store: store, inbox: inbox, onError: onError}
}

// Run returns when the inbox is closed and drained, or when ctx is done.
// Events appended after cancellation use a background context so a
// shutdown drain is not cut short by the cancelled parent.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(context.WithoutCancel(ctx), event); err != nil {
				w.onError(event, err)
			}
		}
	}
}
