package ingest

import (
	"context"
	"errors"
)

// Notifiers fans a status event out to every notifier and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) Publish(ctx context.Context, ev StatusEvent) error {
	var errs []error
	for _, n := range ns {
		if err := n.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
