package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"rewardkit/core"
)

func TestEventBusSyncDispatch(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	defer bus.Close()

	var got []core.Event
	unsubscribe := bus.Subscribe(core.EventDailyClaimed, func(_ context.Context, ev core.Event) {
		got = append(got, ev)
	})

	bus.Publish(context.Background(), core.NewDailyClaimed("u1", 3, 3, "small"))
	if len(got) != 1 || got[0].Day != 3 {
		t.Fatalf("expected one event, got %v", got)
	}

	bus.Publish(context.Background(), core.NewClaimReminder("u1"))
	if len(got) != 1 {
		t.Fatal("handler must only see its subscribed type")
	}

	unsubscribe()
	bus.Publish(context.Background(), core.NewDailyClaimed("u1", 4, 4, "small"))
	if len(got) != 1 {
		t.Fatal("unsubscribed handler must not fire")
	}
}

func TestEventBusAsyncDispatch(t *testing.T) {
	bus := NewEventBus(DispatchAsync)

	var count int32
	bus.Subscribe(core.EventClaimReminder, func(_ context.Context, _ core.Event) {
		atomic.AddInt32(&count, 1)
	})

	for i := 0; i < 10; i++ {
		bus.Publish(context.Background(), core.NewClaimReminder("u1"))
	}

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&count) < 10 {
		select {
		case <-deadline:
			t.Fatalf("only %d of 10 events dispatched", atomic.LoadInt32(&count))
		case <-time.After(5 * time.Millisecond):
		}
	}
	bus.Close()
}
