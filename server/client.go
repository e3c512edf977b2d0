package main

import (
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"arena/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	// Clients send movement at 25 Hz plus shots and hits; anything far
	// above that is a runaway client.
	maxMessagesPerSec = 120
)

// Client represents a WebSocket connection
type Client struct {
	id         string
	hub        *Hub
	conn       *websocket.Conn
	codec      protocol.Codec
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	accountID int64  // 0 = guest
	username  string // "" = guest
}

// NewClient creates a new Client
func NewClient(id string, hub *Hub, conn *websocket.Conn, codec protocol.Codec, remoteAddr string) *Client {
	return &Client{
		id:         id,
		hub:        hub,
		conn:       conn,
		codec:      codec,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		msg, err := c.codec.Decode(raw)
		if err != nil {
			if !errors.Is(err, protocol.ErrUnknownKind) {
				log.Printf("decode error from %s: %v", c.remoteAddr, err)
			}
			continue
		}
		c.handleMessage(msg)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send encodes msg with the client's codec and queues it
func (c *Client) Send(msg protocol.Message) {
	data, err := c.codec.Encode(msg)
	if err != nil {
		log.Printf("encode %s error: %v", msg.Kind(), err)
		return
	}
	c.SendRaw(data)
}

// SendRaw queues pre-encoded bytes. The send channel may already be
// closed by the hub, hence the recover.
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// handleMessage routes account requests locally and everything else to the arena
func (c *Client) handleMessage(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Join, protocol.UpdateMovement, protocol.Shoot, protocol.Hit:
		c.hub.arena.Submit(c.id, m)
	case protocol.Register:
		c.handleRegister(m)
	case protocol.Login:
		c.handleLogin(m)
	case protocol.Auth:
		c.handleAuth(m)
	case protocol.Profile:
		c.handleProfile()
	default:
		log.Printf("unexpected %s from %s", msg.Kind(), c.remoteAddr)
	}
}

func (c *Client) sendError(msg string) {
	c.Send(protocol.Error{Msg: msg})
}

func (c *Client) handleRegister(msg protocol.Register) {
	if c.hub.auth == nil {
		c.sendError("accounts disabled")
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.recorder.Track(EvtRegister, id, c.id, "")
	c.authenticated(id, msg.Username, token)
}

func (c *Client) handleLogin(msg protocol.Login) {
	if c.hub.auth == nil {
		c.sendError("accounts disabled")
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.recorder.Track(EvtLogin, id, c.id, "")
	c.authenticated(id, msg.Username, token)
}

func (c *Client) handleAuth(msg protocol.Auth) {
	if c.hub.auth == nil {
		c.sendError("accounts disabled")
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError(errInvalidToken.Error())
		return
	}
	c.authenticated(id, username, msg.Token)
}

func (c *Client) authenticated(id int64, username, token string) {
	if c.accountID != 0 && c.accountID != id {
		c.hub.SetOffline(c.accountID, c)
	}
	c.accountID = id
	c.username = username
	c.hub.SetOnline(id, c)
	c.hub.arena.LinkAccount(c.id, id)
	c.Send(protocol.AuthOK{Token: token, Username: username, AccountID: id})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.accountID == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetStats(c.accountID)
	if err != nil || stats == nil {
		c.sendError("profile not found")
		return
	}
	c.Send(protocol.ProfileData{
		Username: c.username,
		Kills:    stats.Kills,
		Deaths:   stats.Deaths,
		Wins:     stats.Wins,
		Rounds:   stats.Rounds,
		Playtime: stats.Playtime,
	})
}
