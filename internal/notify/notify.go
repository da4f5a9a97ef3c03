// Package notify composes alert delivery channels.
package notify

import (
	"context"
	"errors"

	"github.com/linnemanlabs/redalert/internal/recall"
)

// Fanout delivers each alert to every channel. A failing channel never
// stops delivery to the others; failures are joined into one error.
type Fanout []recall.Notifier

// Notify implements recall.Notifier.
func (f Fanout) Notify(ctx context.Context, ownerID, recallTitle, matchedValue string) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, ownerID, recallTitle, matchedValue); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
