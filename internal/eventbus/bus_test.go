package eventbus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Traqueur-dev/Sovereign/internal/logging"
	"github.com/Traqueur-dev/Sovereign/types"
)

func testEvent(instance string) types.Event {
	return types.LeadershipAcquiredEvent{Instance: instance, Time: time.Now()}
}

func TestBus_SyncDelivery(t *testing.T) {
	bus := New(1, 16, logging.NewNop())
	defer bus.Shutdown()

	var got []string
	bus.Subscribe(types.EventLeadershipAcquired, func(event types.Event) error {
		got = append(got, event.InstanceID())
		return nil
	}, false)

	bus.Publish(testEvent("api-1"))
	bus.Publish(testEvent("api-2"))

	require.Equal(t, []string{"api-1", "api-2"}, got, "sync listeners run inline in publish order")
}

func TestBus_KindFiltering(t *testing.T) {
	bus := New(1, 16, logging.NewNop())
	defer bus.Shutdown()

	calls := 0
	bus.Subscribe(types.EventLeadershipLost, func(types.Event) error {
		calls++
		return nil
	}, false)

	bus.Publish(testEvent("api-1"))

	require.Zero(t, calls, "listener must only receive its subscribed kind")
}

func TestBus_AsyncDelivery(t *testing.T) {
	bus := New(2, 16, logging.NewNop())
	defer bus.Shutdown()

	var mu sync.Mutex
	var got []string
	bus.Subscribe(types.EventLeadershipAcquired, func(event types.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, event.InstanceID())
		return nil
	}, true)

	bus.Publish(testEvent("api-1"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(1, 16, logging.NewNop())
	defer bus.Shutdown()

	calls := 0
	sub := bus.Subscribe(types.EventLeadershipAcquired, func(types.Event) error {
		calls++
		return nil
	}, false)

	bus.Publish(testEvent("api-1"))
	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat
	bus.Publish(testEvent("api-2"))

	require.Equal(t, 1, calls)
}

func TestBus_ListenerErrorIsContained(t *testing.T) {
	bus := New(1, 16, logging.NewNop())
	defer bus.Shutdown()

	calls := 0
	bus.Subscribe(types.EventLeadershipAcquired, func(types.Event) error {
		return errors.New("listener failure")
	}, false)
	bus.Subscribe(types.EventLeadershipAcquired, func(types.Event) error {
		calls++
		return nil
	}, false)

	bus.Publish(testEvent("api-1"))

	require.Equal(t, 1, calls, "a failing listener must not affect other listeners")
}

func TestBus_ListenerPanicIsContained(t *testing.T) {
	bus := New(1, 16, logging.NewNop())
	defer bus.Shutdown()

	bus.Subscribe(types.EventLeadershipAcquired, func(types.Event) error {
		panic("listener panic")
	}, false)

	require.NotPanics(t, func() {
		bus.Publish(testEvent("api-1"))
	})
}

func TestBus_ShutdownDropsPublishes(t *testing.T) {
	bus := New(1, 16, logging.NewNop())

	calls := 0
	bus.Subscribe(types.EventLeadershipAcquired, func(types.Event) error {
		calls++
		return nil
	}, false)

	bus.Shutdown()
	bus.Shutdown() // idempotent

	require.NotPanics(t, func() {
		bus.Publish(testEvent("api-1"))
	})
	require.Zero(t, calls)
}

func TestBus_ConcurrentPublishAndShutdown(t *testing.T) {
	// Publishing while Shutdown closes the task channel must drop events,
	// never panic on a send to the closed channel.
	for range 50 {
		bus := New(1, 4, logging.NewNop())
		bus.Subscribe(types.EventLeadershipAcquired, func(types.Event) error {
			return nil
		}, true)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				bus.Publish(testEvent("api-1"))
			}
		}()

		bus.Shutdown()
		wg.Wait()
	}
}

func TestBus_QueueOverflowDoesNotBlock(t *testing.T) {
	bus := New(1, 1, logging.NewNop())
	defer bus.Shutdown()

	release := make(chan struct{})
	bus.Subscribe(types.EventLeadershipAcquired, func(types.Event) error {
		<-release
		return nil
	}, true)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 10 {
			bus.Publish(testEvent("api-1"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full async queue")
	}

	close(release)
}
