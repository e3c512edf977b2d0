package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"

	"arena/protocol"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
	qrSize                  = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, clientDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// Serve static files with no-cache so browsers always revalidate
	fs := http.FileServer(http.Dir(clientDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		fs.ServeHTTP(w, r)
	}))

	// WebSocket endpoint; ?codec=msgpack switches to binary frames
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		codec := protocol.CodecByName(r.URL.Query().Get("codec"))
		client := NewClient(uuid.NewString(), hub, conn, codec, ip)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			writeJSON(w, []LeaderboardEntry{})
			return
		}
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = defaultLeaderboardLimit
		}
		limit = min(limit, maxLeaderboardLimit)
		rows, err := hub.db.GetLeaderboard(r.URL.Query().Get("sort"), limit)
		if err != nil {
			log.Printf("leaderboard: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []LeaderboardEntry{}
		}
		writeJSON(w, rows)
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		arena, err := hub.arena.Stats(r.Context())
		if err != nil {
			http.Error(w, "arena unavailable", http.StatusServiceUnavailable)
			return
		}
		resp := struct {
			Arena          ArenaStats     `json:"arena"`
			Connections    int            `json:"connections"`
			Clients        int            `json:"clients"`
			OnlineAccounts int            `json:"onlineAccounts"`
			Events         map[string]int `json:"events,omitempty"`
			DailyActive    int            `json:"dailyActive"`
		}{
			Arena:          arena,
			Connections:    hub.TotalConns(),
			Clients:        hub.ClientCount(),
			OnlineAccounts: hub.OnlineAccounts(),
		}
		if hub.ledger != nil {
			if resp.Events, err = hub.ledger.EventCounts(1); err != nil {
				log.Printf("event counts: %v", err)
			}
			if resp.DailyActive, err = hub.ledger.DailyActive(); err != nil {
				log.Printf("daily active: %v", err)
			}
		}
		writeJSON(w, resp)
	})

	// QR code of the join URL, for phones on the same network
	mux.HandleFunc("GET /qr.png", func(w http.ResponseWriter, r *http.Request) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		joinURL := scheme + "://" + r.Host + "/"
		png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return mux
}
