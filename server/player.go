package main

import (
	"math/rand/v2"
	"strings"
	"time"

	"arena/protocol"
)

// Player is the authoritative session record of one joined connection
type Player struct {
	ID   string
	Name string
	protocol.Transform
	protocol.Appearance
	HP     int
	Kills  int
	Deaths int

	joinSeq   uint64 // scoreboard tie-break
	joinedAt  time.Time
	accountID int64 // 0 = guest
}

// NewPlayer creates a player at full health on a random spawn point
func NewPlayer(id string, msg protocol.Join, rng *rand.Rand) *Player {
	p := &Player{
		ID:         id,
		Name:       cleanName(msg.Name),
		Appearance: msg.Appearance,
		HP:         protocol.MaxHP,
	}
	p.Transform = spawnTransform(rng)
	return p
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return protocol.DefaultName
	}
	return name
}

// spawnTransform picks a point in the spawn square facing the identity rotation
func spawnTransform(rng *rand.Rand) protocol.Transform {
	return protocol.Transform{
		X:      (rng.Float64()*2 - 1) * protocol.SpawnHalfExtent,
		Y:      protocol.SpawnHeight,
		Z:      (rng.Float64()*2 - 1) * protocol.SpawnHalfExtent,
		QW:     1,
		MeshQW: 1,
	}
}

// Alive reports whether the player can still be hit
func (p *Player) Alive() bool {
	return p.HP > 0
}

// TakeDamage applies damage and returns true if this hit killed the player.
// A dead player takes no damage, so death is reported once per life.
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive() {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		return true
	}
	return false
}

// Respawn restores full health at a fresh spawn point
func (p *Player) Respawn(rng *rand.Rand) {
	p.HP = protocol.MaxHP
	p.Transform = spawnTransform(rng)
}

// ResetRound zeroes combat state; identity and appearance are kept
func (p *Player) ResetRound(rng *rand.Rand) {
	p.Kills = 0
	p.Deaths = 0
	p.Respawn(rng)
}

func (p *Player) State() protocol.PlayerState {
	return protocol.PlayerState{
		ID:         p.ID,
		Name:       p.Name,
		Transform:  p.Transform,
		Appearance: p.Appearance,
		HP:         p.HP,
		Kills:      p.Kills,
		Deaths:     p.Deaths,
	}
}

func (p *Player) respawnMsg() protocol.PlayerRespawn {
	return protocol.PlayerRespawn{ID: p.ID, X: p.X, Y: p.Y, Z: p.Z, HP: p.HP}
}
