package main

import (
	"cmp"
	"slices"

	"arena/protocol"
)

// join creates a session for id. A second join from the same connection
// replaces the first one.
func (a *Arena) join(id string, msg protocol.Join) *Player {
	if _, ok := a.players[id]; ok {
		a.leave(id)
	}

	p := NewPlayer(id, msg, a.rng)
	p.joinSeq = a.joinSeq
	a.joinSeq++
	p.joinedAt = a.now()
	if pe, ok := a.peers[id]; ok {
		p.accountID = pe.accountID
	}
	a.players[id] = p

	roster := make(protocol.CurrentPlayers, len(a.players))
	for pid, other := range a.players {
		roster[pid] = other.State()
	}
	a.sendTo(id, roster)
	a.broadcastExcept(id, protocol.PlayerJoined{PlayerState: p.State()})

	a.rec.Track(EvtSessionStart, p.accountID, id, "")
	return p
}

// updateMovement is last-write-wins with no plausibility checks
func (a *Arena) updateMovement(id string, t protocol.Transform) {
	p, ok := a.players[id]
	if !ok {
		return
	}
	p.Transform = t
	a.broadcastExcept(id, protocol.PlayerMoved{ID: id, Transform: t})
}

// leave removes the session for id; no-op if it never joined
func (a *Arena) leave(id string) {
	p, ok := a.players[id]
	if !ok {
		return
	}
	a.cancelRespawn(id)
	delete(a.players, id)

	if p.accountID != 0 {
		a.rec.AddCareer(CareerDelta{
			AccountID: p.accountID,
			Kills:     p.Kills,
			Deaths:    p.Deaths,
			Playtime:  a.now().Sub(p.joinedAt).Seconds(),
		})
	}
	a.rec.Track(EvtSessionEnd, p.accountID, id, "")

	a.broadcastExcept(id, protocol.PlayerLeft{ID: id})
	a.broadcastScoreboard()
}

func (a *Arena) playersByJoinOrder() []*Player {
	list := make([]*Player, 0, len(a.players))
	for _, p := range a.players {
		list = append(list, p)
	}
	slices.SortFunc(list, func(x, y *Player) int {
		return cmp.Compare(x.joinSeq, y.joinSeq)
	})
	return list
}

// scoreboard orders by kills desc, then deaths asc, then join order
func (a *Arena) scoreboard() protocol.ScoreboardUpdate {
	list := a.playersByJoinOrder()
	slices.SortStableFunc(list, func(x, y *Player) int {
		if c := cmp.Compare(y.Kills, x.Kills); c != 0 {
			return c
		}
		return cmp.Compare(x.Deaths, y.Deaths)
	})
	rows := make(protocol.ScoreboardUpdate, 0, len(list))
	for _, p := range list {
		rows = append(rows, protocol.ScoreEntry{ID: p.ID, Name: p.Name, Kills: p.Kills, Deaths: p.Deaths})
	}
	return rows
}

func (a *Arena) broadcastScoreboard() {
	a.broadcast(a.scoreboard())
}
