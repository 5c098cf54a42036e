package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("listing.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindListingRefreshed, Timestamp: time.Now(), Payload: 42})

	select {
	case evt := <-ch:
		if evt.Kind != KindListingRefreshed {
			t.Errorf("got kind %q, want %q", evt.Kind, KindListingRefreshed)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("voice.", 10)
	defer unsub()

	b.Emit(KindListingRefreshed, nil)
	b.Emit(KindVoiceStateChanged, nil)

	select {
	case evt := <-ch:
		if evt.Kind != KindVoiceStateChanged {
			t.Errorf("got kind %q, want %q", evt.Kind, KindVoiceStateChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the listing event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("view.", 10)
	unsub()

	b.Emit(KindViewSent, nil)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("test.", 1)
	defer unsub()

	// Fill buffer.
	b.Emit("test.one", nil)
	// This should be dropped (non-blocking).
	b.Emit("test.two", nil)

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got kind %q, want test.one", evt.Kind)
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected second event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: second event dropped.
	}
}
