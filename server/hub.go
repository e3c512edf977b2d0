package main

import (
	"context"
	"sync"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub tracks websocket clients and hands them to the arena
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	unregister chan *Client
	done       chan struct{}
	arena      *Arena
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// Accounts and ledger; nil when running without a database
	db       *DB
	auth     *Auth
	ledger   *Ledger
	recorder Recorder
	// Online accounts: accountID -> *Client
	onlineMu    sync.RWMutex
	onlineUsers map[int64]*Client
}

// NewHub creates a Hub. db, auth and ledger may all be nil.
func NewHub(arena *Arena, db *DB, auth *Auth, ledger *Ledger) *Hub {
	h := &Hub{
		clients:     make(map[string]*Client),
		unregister:  make(chan *Client, 64),
		done:        make(chan struct{}),
		arena:       arena,
		ipConns:     make(map[string]int),
		db:          db,
		auth:        auth,
		ledger:      ledger,
		recorder:    nopRecorder{},
		onlineUsers: make(map[int64]*Client),
	}
	if ledger != nil {
		h.recorder = ledger
	}
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Register adds a client and connects it to the arena. It must return
// before the client's ReadPump starts so the arena sees the connect ahead
// of any message from that client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()
	h.arena.Connect(client.id, client)
}

// Unregister hands a finished client to Run. It gives up once the hub has
// stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Run processes unregister events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			h.arena.Disconnect(client.id)
			if client.accountID != 0 {
				h.SetOffline(client.accountID, client)
			}
		}
	}
}

// SetOnline marks an authenticated account as online
func (h *Hub) SetOnline(accountID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[accountID] = client
}

// SetOffline removes an account from online tracking unless another
// client has since logged in with it
func (h *Hub) SetOffline(accountID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	if h.onlineUsers[accountID] == client {
		delete(h.onlineUsers, accountID)
	}
}

// OnlineAccounts returns the number of authenticated clients
func (h *Hub) OnlineAccounts() int {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	return len(h.onlineUsers)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
