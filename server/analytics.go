package main

import (
	"database/sql"
	"log"
	"sync"
	"time"
)

// Event types for the event log
const (
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtPlayerKill   = "player_kill"
	EvtRoundWon     = "round_won"
	EvtRoundEnd     = "round_end"
	EvtRegister     = "register"
	EvtLogin        = "login"
)

// Recorder receives side records from the arena. Implementations must
// never block the caller.
type Recorder interface {
	Track(evtType string, accountID int64, connID string, data string)
	AddCareer(d CareerDelta)
	RecordRound(r RoundSummary)
}

type nopRecorder struct{}

func (nopRecorder) Track(string, int64, string, string) {}
func (nopRecorder) AddCareer(CareerDelta)               {}
func (nopRecorder) RecordRound(RoundSummary)            {}

// CareerDelta is added to an account's stats row
type CareerDelta struct {
	AccountID int64
	Kills     int
	Deaths    int
	Wins      int
	Rounds    int
	Playtime  float64
}

// RoundPlayer is one line of a finished round; AccountID is 0 for guests
type RoundPlayer struct {
	AccountID int64
	Name      string
	Kills     int
	Deaths    int
}

// RoundSummary describes a finished round
type RoundSummary struct {
	WinnerName    string
	WinnerAccount int64
	Duration      float64
	Players       []RoundPlayer
}

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	AccountID int64
	ConnID    string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// ledgerJob carries exactly one of its fields
type ledgerJob struct {
	event  *AnalyticsEvent
	career *CareerDelta
	round  *RoundSummary
}

// Ledger persists side records with batched background writes
type Ledger struct {
	db   *DB
	jobs chan ledgerJob
	stop chan struct{}
	wg   sync.WaitGroup

	flushEvery time.Duration
}

// NewLedger creates and starts the background writer
func NewLedger(db *DB) *Ledger {
	l := &Ledger{
		db:         db,
		jobs:       make(chan ledgerJob, 1024),
		stop:       make(chan struct{}),
		flushEvery: 5 * time.Second,
	}
	l.wg.Add(1)
	go l.writer()
	return l
}

// Track enqueues an event for async persistence (non-blocking)
func (l *Ledger) Track(evtType string, accountID int64, connID string, data string) {
	l.enqueue(ledgerJob{event: &AnalyticsEvent{
		Type:      evtType,
		AccountID: accountID,
		ConnID:    connID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}})
}

func (l *Ledger) AddCareer(d CareerDelta) {
	l.enqueue(ledgerJob{career: &d})
}

func (l *Ledger) RecordRound(r RoundSummary) {
	l.enqueue(ledgerJob{round: &r})
}

func (l *Ledger) enqueue(job ledgerJob) {
	select {
	case l.jobs <- job:
	default:
		// Channel full, drop rather than stall the arena
		log.Printf("ledger: queue full, dropping record")
	}
}

// Stop drains pending records and shuts the writer down
func (l *Ledger) Stop() {
	close(l.stop)
	l.wg.Wait()
}

func (l *Ledger) writer() {
	defer l.wg.Done()

	batch := make([]ledgerJob, 0, 64)
	ticker := time.NewTicker(l.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case job := <-l.jobs:
			batch = append(batch, job)
			if len(batch) >= 50 {
				l.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				l.flush(batch)
				batch = batch[:0]
			}
		case <-l.stop:
			for drained := false; !drained; {
				select {
				case job := <-l.jobs:
					batch = append(batch, job)
				default:
					drained = true
				}
			}
			if len(batch) > 0 {
				l.flush(batch)
			}
			return
		}
	}
}

// flush writes a batch in one transaction
func (l *Ledger) flush(jobs []ledgerJob) {
	if l.db == nil || len(jobs) == 0 {
		return
	}
	tx, err := l.db.conn.Begin()
	if err != nil {
		log.Printf("ledger: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	for _, job := range jobs {
		switch {
		case job.event != nil:
			err = insertEvent(tx, job.event)
		case job.career != nil:
			err = applyCareer(tx, *job.career)
		case job.round != nil:
			err = insertRound(tx, *job.round)
		}
		if err != nil {
			log.Printf("ledger: write error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("ledger: commit error: %v", err)
	}
}

func insertEvent(tx *sql.Tx, evt *AnalyticsEvent) error {
	pid := sql.NullInt64{Int64: evt.AccountID, Valid: evt.AccountID > 0}
	cid := sql.NullString{String: evt.ConnID, Valid: evt.ConnID != ""}
	data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
	_, err := tx.Exec(
		"INSERT INTO analytics_events (event_type, player_id, conn_id, data, created_at) VALUES (?, ?, ?, ?, ?)",
		evt.Type, pid, cid, data, evt.Timestamp.Format(time.RFC3339),
	)
	return err
}

// EventCounts returns counts of each event type for the last N days
func (l *Ledger) EventCounts(days int) (map[string]int, error) {
	if l.db == nil {
		return nil, nil
	}
	rows, err := l.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// DailyActive returns the number of distinct accounts seen today
func (l *Ledger) DailyActive() (int, error) {
	if l.db == nil {
		return 0, nil
	}
	var count int
	err := l.db.conn.QueryRow(`
		SELECT COUNT(DISTINCT player_id) FROM analytics_events
		WHERE player_id IS NOT NULL AND created_at >= date('now')
	`).Scan(&count)
	return count, err
}
