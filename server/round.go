package main

import "arena/protocol"

// resetGame starts a new round. Identities, names and appearances survive;
// kills, deaths, health and positions do not.
func (a *Arena) resetGame() {
	a.resetTimer = nil
	a.recordRound()

	for id := range a.respawns {
		a.cancelRespawn(id)
	}
	for _, p := range a.playersByJoinOrder() {
		p.ResetRound(a.rng)
		a.broadcast(p.respawnMsg())
	}

	a.active = true
	a.roundStart = a.now()
	a.winnerName = ""
	a.winnerAcct = 0

	a.broadcast(protocol.GameReset{})
	a.broadcastScoreboard()
}

// recordRound hands the finished round to the ledger before stats are zeroed
func (a *Arena) recordRound() {
	summary := RoundSummary{
		WinnerName:    a.winnerName,
		WinnerAccount: a.winnerAcct,
		Duration:      a.now().Sub(a.roundStart).Seconds(),
	}
	for _, p := range a.playersByJoinOrder() {
		summary.Players = append(summary.Players, RoundPlayer{
			AccountID: p.accountID,
			Name:      p.Name,
			Kills:     p.Kills,
			Deaths:    p.Deaths,
		})
		if p.accountID != 0 {
			a.rec.AddCareer(CareerDelta{AccountID: p.accountID, Kills: p.Kills, Deaths: p.Deaths, Rounds: 1})
		}
	}
	a.rec.RecordRound(summary)
	a.rec.Track(EvtRoundEnd, a.winnerAcct, "", "")
}
