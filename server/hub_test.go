package main

import (
	"context"
	"testing"
	"time"

	"arena/protocol"
)

func nextFrame(t *testing.T, c *Client) protocol.Message {
	t.Helper()
	select {
	case data := <-c.send:
		msg, err := c.codec.Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return nil
}

func TestRegisterConnectsBeforeFirstMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	arena := NewArena(nil)
	go arena.Run(ctx)
	hub := NewHub(arena, nil, nil, nil)
	go hub.Run(ctx)

	c := NewClient("c1", hub, nil, protocol.JSON, "1.2.3.4")
	hub.Register(c)
	// what ReadPump does with a join that arrives straight after the upgrade
	arena.Submit(c.id, protocol.Join{Name: "Early"})

	if w, ok := nextFrame(t, c).(protocol.Welcome); !ok || w.ID != "c1" {
		t.Fatalf("expected welcome first, got %#v", w)
	}
	roster, ok := nextFrame(t, c).(protocol.CurrentPlayers)
	if !ok {
		t.Fatalf("expected roster, got %#v", roster)
	}
	if roster["c1"].Name != "Early" {
		t.Errorf("expected own entry in roster, got %+v", roster)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}
}

func TestUnregisterAfterHubStopped(t *testing.T) {
	hub := NewHub(NewArena(nil), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(hub.unregister)+10; i++ {
			hub.Unregister(&Client{id: "gone"})
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Unregister blocked after the hub stopped")
	}
}
