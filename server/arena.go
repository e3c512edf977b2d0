package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"time"

	"arena/protocol"
)

const inboxSize = 1024

var errArenaStopped = errors.New("arena stopped")

// Broadcaster is anything the arena can push messages to
type Broadcaster interface {
	Send(msg protocol.Message)
}

// Inbox commands. Everything that touches session state arrives as one of these.
type connectCmd struct {
	id     string
	client Broadcaster
}

type disconnectCmd struct {
	id string
}

type messageCmd struct {
	id  string
	msg protocol.Message
}

type accountCmd struct {
	id        string
	accountID int64
}

type timerCmd struct {
	fn func()
}

type statsCmd struct {
	reply chan ArenaStats
}

// peer is a connected client, joined or not
type peer struct {
	client    Broadcaster
	accountID int64
}

type respawnTask struct {
	timer Timer
}

// ArenaStats is a point-in-time view for the HTTP API
type ArenaStats struct {
	Connections int                   `json:"connections"`
	Players     int                   `json:"players"`
	RoundActive bool                  `json:"roundActive"`
	Scoreboard  []protocol.ScoreEntry `json:"scoreboard"`
}

// Arena is the single global game room. One goroutine (Run) owns all of
// its state; other goroutines talk to it through the inbox.
type Arena struct {
	inbox chan any
	done  chan struct{}

	peers    map[string]*peer
	players  map[string]*Player
	respawns map[string]*respawnTask

	active     bool
	roundStart time.Time
	resetTimer Timer
	winnerName string
	winnerAcct int64
	joinSeq    uint64

	rng   *rand.Rand
	sched Scheduler
	rec   Recorder
	now   func() time.Time
}

// NewArena creates an arena with an active round. rec may be nil.
func NewArena(rec Recorder) *Arena {
	if rec == nil {
		rec = nopRecorder{}
	}
	a := &Arena{
		inbox:    make(chan any, inboxSize),
		done:     make(chan struct{}),
		peers:    make(map[string]*peer),
		players:  make(map[string]*Player),
		respawns: make(map[string]*respawnTask),
		active:   true,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		rec:      rec,
		now:      time.Now,
	}
	a.sched = loopScheduler{arena: a}
	a.roundStart = a.now()
	return a
}

// Run processes commands until ctx is cancelled
func (a *Arena) Run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			a.stopTimers()
			return
		case cmd := <-a.inbox:
			a.handle(cmd)
		}
	}
}

// post enqueues a command. Returns false once the arena has stopped.
func (a *Arena) post(cmd any) bool {
	select {
	case a.inbox <- cmd:
		return true
	case <-a.done:
		return false
	}
}

// Connect registers a transport-level client. It receives broadcasts
// immediately, before it joins.
func (a *Arena) Connect(id string, client Broadcaster) {
	a.post(connectCmd{id: id, client: client})
}

// Disconnect removes the client and its session, if any
func (a *Arena) Disconnect(id string) {
	a.post(disconnectCmd{id: id})
}

// Submit hands a decoded client message to the arena
func (a *Arena) Submit(id string, msg protocol.Message) {
	a.post(messageCmd{id: id, msg: msg})
}

// LinkAccount attaches an authenticated account to a connection
func (a *Arena) LinkAccount(id string, accountID int64) {
	a.post(accountCmd{id: id, accountID: accountID})
}

// Stats asks the arena goroutine for a snapshot
func (a *Arena) Stats(ctx context.Context) (ArenaStats, error) {
	reply := make(chan ArenaStats, 1)
	if !a.post(statsCmd{reply: reply}) {
		return ArenaStats{}, errArenaStopped
	}
	select {
	case s := <-reply:
		return s, nil
	case <-a.done:
		return ArenaStats{}, errArenaStopped
	case <-ctx.Done():
		return ArenaStats{}, ctx.Err()
	}
}

func (a *Arena) handle(cmd any) {
	switch c := cmd.(type) {
	case connectCmd:
		a.connect(c.id, c.client)
	case disconnectCmd:
		a.leave(c.id)
		delete(a.peers, c.id)
	case messageCmd:
		a.dispatch(c.id, c.msg)
	case accountCmd:
		a.linkAccount(c.id, c.accountID)
	case timerCmd:
		c.fn()
	case statsCmd:
		c.reply <- a.stats()
	default:
		log.Printf("arena: unknown command %T", cmd)
	}
}

func (a *Arena) dispatch(id string, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Join:
		a.join(id, m)
	case protocol.UpdateMovement:
		a.updateMovement(id, m.Transform)
	case protocol.Shoot:
		a.shoot(id, m)
	case protocol.Hit:
		a.applyHit(id, m.VictimID, m.Damage)
	}
}

func (a *Arena) connect(id string, client Broadcaster) {
	a.peers[id] = &peer{client: client}
	client.Send(protocol.Welcome{ID: id})
}

func (a *Arena) linkAccount(id string, accountID int64) {
	pe, ok := a.peers[id]
	if !ok {
		return
	}
	pe.accountID = accountID
	if p, ok := a.players[id]; ok {
		p.accountID = accountID
	}
}

func (a *Arena) stats() ArenaStats {
	return ArenaStats{
		Connections: len(a.peers),
		Players:     len(a.players),
		RoundActive: a.active,
		Scoreboard:  a.scoreboard(),
	}
}

func (a *Arena) stopTimers() {
	for id := range a.respawns {
		a.cancelRespawn(id)
	}
	if a.resetTimer != nil {
		a.resetTimer.Stop()
		a.resetTimer = nil
	}
}

func (a *Arena) broadcast(msg protocol.Message) {
	for _, pe := range a.peers {
		pe.client.Send(msg)
	}
}

func (a *Arena) broadcastExcept(skip string, msg protocol.Message) {
	for id, pe := range a.peers {
		if id != skip {
			pe.client.Send(msg)
		}
	}
}

func (a *Arena) sendTo(id string, msg protocol.Message) {
	if pe, ok := a.peers[id]; ok {
		pe.client.Send(msg)
	}
}
