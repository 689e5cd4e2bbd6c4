package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// receive waits for one event or fails the test.
func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed before an event arrived")
		return ev
	case <-time.After(time.Second):
		require.FailNow(t, "no event within a second")
		return Event[T]{}
	}
}

// requireClosed waits for ch to be closed, draining buffered events first.
func requireClosed[T any](t *testing.T, ch <-chan Event[T]) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			require.FailNow(t, "channel still open after a second")
		}
	}
}

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()
	ctx := context.Background()

	render, store := b.Subscribe(ctx), b.Subscribe(ctx)
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(UpdatedEvent, "Engine")
	b.Publish(DeletedEvent, "Navi")

	for _, sub := range []<-chan Event[string]{render, store} {
		first := receive(t, sub)
		require.Equal(t, UpdatedEvent, first.Type)
		require.Equal(t, "Engine", first.Payload)
		require.False(t, first.Timestamp.IsZero())

		second := receive(t, sub)
		require.Equal(t, DeletedEvent, second.Type)
		require.Equal(t, "Navi", second.Payload)
	}
}

func TestBroker_PublishWithoutSubscribers(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	b.Publish(CreatedEvent, 1)
	require.Zero(t, b.Dropped())
}

func TestBroker_DropsForFullSubscriber(t *testing.T) {
	b := NewBrokerWithBuffer[int](2)
	defer b.Close()
	ctx := context.Background()

	slow := b.Subscribe(ctx)
	for i := range 5 {
		b.Publish(UpdatedEvent, i)
	}

	require.Equal(t, uint64(3), b.Dropped())
	require.Equal(t, 0, receive(t, slow).Payload)
	require.Equal(t, 1, receive(t, slow).Payload)

	// Room again after draining.
	b.Publish(UpdatedEvent, 9)
	require.Equal(t, 9, receive(t, slow).Payload)
	require.Equal(t, uint64(3), b.Dropped())
}

func TestBroker_CancelUnsubscribes(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)
	kept := b.Subscribe(context.Background())
	require.Equal(t, 2, b.SubscriberCount())

	cancel()
	requireClosed(t, sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Publish(UpdatedEvent, "Root")
	require.Equal(t, "Root", receive(t, kept).Payload)
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker[string]()
	sub := b.Subscribe(context.Background())

	b.Close()
	requireClosed(t, sub)
	require.Zero(t, b.SubscriberCount())

	// Publishing and closing again after Close are no-ops.
	b.Publish(UpdatedEvent, "late")
	require.NotPanics(t, b.Close)

	late := b.Subscribe(context.Background())
	_, ok := <-late
	require.False(t, ok)
}

func TestBroker_CancelAfterClose(t *testing.T) {
	b := NewBroker[string]()
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)

	b.Close()
	cancel()
	requireClosed(t, sub)
}

func TestBroker_ConcurrentUse(t *testing.T) {
	b := NewBrokerWithBuffer[int](1024)
	defer b.Close()

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 100 {
				b.Publish(UpdatedEvent, w*100+i)
			}
		}()
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithCancel(context.Background())
			_ = b.Subscribe(ctx)
			cancel()
		}()
	}
	wg.Wait()
}

func TestForward(t *testing.T) {
	t.Run("stops when the channel closes", func(t *testing.T) {
		b := NewBroker[string]()
		sub := b.Subscribe(context.Background())
		b.Publish(CreatedEvent, "A")
		b.Publish(CreatedEvent, "B")

		var got []string
		done := make(chan struct{})
		go func() {
			defer close(done)
			Forward(context.Background(), sub, func(ev Event[string]) {
				got = append(got, ev.Payload)
			})
		}()

		// Buffered events are still delivered after Close.
		b.Close()
		<-done
		require.Equal(t, []string{"A", "B"}, got)
	})

	t.Run("stops when ctx is done", func(t *testing.T) {
		b := NewBroker[string]()
		defer b.Close()
		sub := b.Subscribe(context.Background())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			Forward(ctx, sub, func(Event[string]) {})
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			require.FailNow(t, "Forward did not return after cancel")
		}
	})
}
