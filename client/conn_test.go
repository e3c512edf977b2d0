package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"arena/protocol"
)

// echoServer greets with a Welcome and answers a join with PlayerJoined.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		codec := protocol.CodecByName(r.URL.Query().Get("codec"))
		frame := websocket.TextMessage
		if codec.Binary() {
			frame = websocket.BinaryMessage
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		send := func(m protocol.Message) {
			data, _ := codec.Encode(m)
			ws.WriteMessage(frame, data)
		}
		send(protocol.Welcome{ID: "c1"})
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg, err := codec.Decode(data)
			if err != nil {
				continue
			}
			if j, ok := msg.(protocol.Join); ok {
				send(protocol.PlayerJoined{PlayerState: protocol.PlayerState{ID: "c1", Name: j.Name, HP: protocol.MaxHP}})
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func nextEvent(t *testing.T, c *Conn) protocol.Message {
	t.Helper()
	select {
	case msg, ok := <-c.Events():
		if !ok {
			t.Fatal("events closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestConnRoundTrip(t *testing.T) {
	for _, codec := range []protocol.Codec{protocol.JSON, protocol.Msgpack} {
		t.Run(codec.Name(), func(t *testing.T) {
			srv := echoServer(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", codec)
			if err != nil {
				t.Fatal(err)
			}
			runErr := make(chan error, 1)
			go func() { runErr <- c.Run(ctx) }()

			if w, ok := nextEvent(t, c).(protocol.Welcome); !ok || w.ID != "c1" {
				t.Fatalf("expected welcome, got %#v", w)
			}
			if err := c.Join("rex", protocol.Appearance{HatType: protocol.HatCap}); err != nil {
				t.Fatal(err)
			}
			j, ok := nextEvent(t, c).(protocol.PlayerJoined)
			if !ok || j.Name != "rex" {
				t.Fatalf("expected playerJoined for rex, got %#v", j)
			}

			cancel()
			select {
			case err := <-runErr:
				if err != nil {
					t.Errorf("expected clean shutdown, got %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return")
			}
			if err := c.Send(protocol.Profile{}); err != ErrClosed {
				t.Errorf("expected ErrClosed, got %v", err)
			}
		})
	}
}

func TestDialRejectsBadURL(t *testing.T) {
	if _, err := Dial(context.Background(), "://nope", nil); err == nil {
		t.Error("expected error")
	}
}
