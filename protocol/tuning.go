package protocol

import "time"

// Tuning shared by server and clients. Changing any of these breaks parity
// with other implementations of the protocol.
const (
	MaxHP         = 3
	KillsToWin    = 20
	DefaultDamage = 1

	RespawnDelay = 5000 * time.Millisecond
	WinDisplay   = 6000 * time.Millisecond

	SendRate     = 25 // movement updates per second
	SendInterval = time.Second / SendRate

	SpawnHalfExtent = 50.0 // spawn square is [-50,50] on X and Z
	SpawnHeight     = 2.0

	DefaultName = "Player"
)
