package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"arena/protocol"
)

var (
	// ErrBackpressure is returned when the outgoing queue is full.
	ErrBackpressure = errors.New("client: send queue full")
	// ErrClosed is returned by Send after the connection has shut down.
	ErrClosed = errors.New("client: connection closed")
)

const (
	writeWait    = 10 * time.Second
	sendQueue    = 64
	eventsBuffer = 256
)

// Conn is a websocket connection to the arena server.
type Conn struct {
	ws     *websocket.Conn
	codec  protocol.Codec
	events chan protocol.Message
	out    chan []byte
	done   chan struct{}
}

// Dial connects to rawURL, a ws:// or wss:// address of the /ws endpoint.
func Dial(ctx context.Context, rawURL string, codec protocol.Codec) (*Conn, error) {
	if codec == nil {
		codec = protocol.JSON
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	q := u.Query()
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	return &Conn{
		ws:     ws,
		codec:  codec,
		events: make(chan protocol.Message, eventsBuffer),
		out:    make(chan []byte, sendQueue),
		done:   make(chan struct{}),
	}, nil
}

// Events delivers decoded server messages. It is closed when Run returns.
func (c *Conn) Events() <-chan protocol.Message { return c.events }

// Run pumps the connection until ctx is cancelled or the socket fails. A
// cancelled ctx is a clean shutdown and returns nil.
func (c *Conn) Run(ctx context.Context) error {
	defer close(c.events)
	defer close(c.done)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return c.readLoop(ctx) })
	eg.Go(func() error { return c.writeLoop(ctx) })
	eg.Go(func() error {
		<-ctx.Done()
		// unblocks ReadMessage
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		return c.ws.Close()
	})

	err := eg.Wait()
	if errors.Is(err, context.Canceled) || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	return err
}

func (c *Conn) readLoop(ctx context.Context) error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		msg, err := c.codec.Decode(data)
		if err != nil {
			if !errors.Is(err, protocol.ErrUnknownKind) {
				slog.Warn("dropping undecodable frame", "err", err)
			}
			continue
		}
		select {
		case c.events <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Conn) writeLoop(ctx context.Context) error {
	frame := websocket.TextMessage
	if c.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-c.out:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(frame, data); err != nil {
				return err
			}
		}
	}
}

// Send queues msg without blocking.
func (c *Conn) Send(msg protocol.Message) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *Conn) Join(name string, look protocol.Appearance) error {
	return c.Send(protocol.Join{Name: name, Appearance: look})
}

func (c *Conn) SendMovement(t protocol.Transform) error {
	return c.Send(protocol.UpdateMovement{Transform: t})
}

func (c *Conn) Shoot(origin, target protocol.Vec3) error {
	return c.Send(protocol.Shoot{Origin: origin, Target: target})
}

// ReportHit tells the server this client's projectile struck victimID.
func (c *Conn) ReportHit(victimID string, damage int) error {
	return c.Send(protocol.Hit{VictimID: victimID, Damage: damage})
}

func (c *Conn) Register(username, password string) error {
	return c.Send(protocol.Register{Username: username, Password: password})
}

func (c *Conn) Login(username, password string) error {
	return c.Send(protocol.Login{Username: username, Password: password})
}

// Resume authenticates with a token from an earlier AuthOK.
func (c *Conn) Resume(token string) error {
	return c.Send(protocol.Auth{Token: token})
}

// Close drops the socket. Prefer cancelling the context passed to Run.
func (c *Conn) Close() error {
	return c.ws.Close()
}
