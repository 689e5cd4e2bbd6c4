package pubsub

import "context"

// Forward calls fn for each event received on ch until ctx is done or ch is
// closed. It blocks; run it in its own goroutine.
func Forward[T any](ctx context.Context, ch <-chan Event[T], fn func(Event[T])) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			fn(event)
		}
	}
}
