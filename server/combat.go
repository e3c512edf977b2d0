package main

import (
	"encoding/json"

	"arena/protocol"
)

// shoot relays a fired projectile to everyone else. Nothing is validated.
func (a *Arena) shoot(id string, msg protocol.Shoot) {
	if _, ok := a.players[id]; !ok {
		return
	}
	a.broadcastExcept(id, protocol.PlayerShot{ShooterID: id, Origin: msg.Origin, Target: msg.Target})
}

// applyHit trusts the shooter's report. When two lethal hits race, the
// first one processed gets the kill and the second is dropped.
func (a *Arena) applyHit(shooterID, victimID string, damage int) {
	if !a.active {
		return
	}
	shooter, ok := a.players[shooterID]
	if !ok {
		return
	}
	victim, ok := a.players[victimID]
	if !ok || !victim.Alive() {
		return
	}
	if damage <= 0 {
		damage = protocol.DefaultDamage
	}

	if !victim.TakeDamage(damage) {
		a.broadcast(protocol.PlayerDamaged{ID: victim.ID, HP: victim.HP, AttackerID: shooter.ID})
		return
	}

	shooter.Kills++
	victim.Deaths++
	a.rec.Track(EvtPlayerKill, shooter.accountID, shooter.ID, killData(victim))

	a.broadcast(protocol.PlayerDied{
		VictimID:   victim.ID,
		KillerID:   shooter.ID,
		KillerName: shooter.Name,
		VictimName: victim.Name,
	})
	a.broadcastScoreboard()

	if shooter.Kills >= protocol.KillsToWin {
		a.win(shooter)
		return
	}
	a.scheduleRespawn(victim.ID)
}

func killData(victim *Player) string {
	b, _ := json.Marshal(map[string]any{"victim": victim.Name, "victim_account": victim.accountID})
	return string(b)
}

func (a *Arena) scheduleRespawn(id string) {
	a.cancelRespawn(id)
	task := &respawnTask{}
	task.timer = a.sched.AfterFunc(protocol.RespawnDelay, func() {
		a.respawn(id, task)
	})
	a.respawns[id] = task
}

func (a *Arena) cancelRespawn(id string) {
	if task, ok := a.respawns[id]; ok {
		task.timer.Stop()
		delete(a.respawns, id)
	}
}

// respawn fires from the scheduler. A task that was cancelled or replaced
// after its timer already fired is ignored.
func (a *Arena) respawn(id string, task *respawnTask) {
	if a.respawns[id] != task {
		return
	}
	delete(a.respawns, id)
	p, ok := a.players[id]
	if !ok {
		return
	}
	p.Respawn(a.rng)
	a.broadcast(p.respawnMsg())
}

// win ends the round and schedules the reset after the display window
func (a *Arena) win(shooter *Player) {
	a.active = false
	a.winnerName = shooter.Name
	a.winnerAcct = shooter.accountID
	if shooter.accountID != 0 {
		a.rec.AddCareer(CareerDelta{AccountID: shooter.accountID, Wins: 1})
	}
	a.rec.Track(EvtRoundWon, shooter.accountID, shooter.ID, "")

	a.broadcast(protocol.GameWon{WinnerID: shooter.ID, WinnerName: shooter.Name, Kills: shooter.Kills})
	a.resetTimer = a.sched.AfterFunc(protocol.WinDisplay, a.resetGame)
}
