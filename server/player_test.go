package main

import (
	"math/rand/v2"
	"testing"

	"arena/protocol"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("test1", protocol.Join{
		Name:       "  Rex ",
		Appearance: protocol.Appearance{HatType: protocol.HatWizard, FurColor: "#123456"},
	}, testRNG())
	if p.ID != "test1" {
		t.Errorf("expected ID test1, got %s", p.ID)
	}
	if p.Name != "Rex" {
		t.Errorf("expected trimmed name Rex, got %q", p.Name)
	}
	if p.HatType != protocol.HatWizard || p.FurColor != "#123456" {
		t.Errorf("appearance not kept: %+v", p.Appearance)
	}
	if p.HP != protocol.MaxHP {
		t.Errorf("expected HP %d, got %d", protocol.MaxHP, p.HP)
	}
	if p.Kills != 0 || p.Deaths != 0 {
		t.Error("expected zero stats")
	}
}

func TestNewPlayerDefaultName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		p := NewPlayer("x", protocol.Join{Name: name}, testRNG())
		if p.Name != protocol.DefaultName {
			t.Errorf("name %q: expected %s, got %q", name, protocol.DefaultName, p.Name)
		}
	}
}

func TestSpawnWithinBounds(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 1000; i++ {
		tr := spawnTransform(rng)
		if tr.X < -protocol.SpawnHalfExtent || tr.X > protocol.SpawnHalfExtent {
			t.Fatalf("x out of bounds: %f", tr.X)
		}
		if tr.Z < -protocol.SpawnHalfExtent || tr.Z > protocol.SpawnHalfExtent {
			t.Fatalf("z out of bounds: %f", tr.Z)
		}
		if tr.Y != protocol.SpawnHeight {
			t.Fatalf("expected height %v, got %v", protocol.SpawnHeight, tr.Y)
		}
	}
}

func TestPlayerTakeDamage(t *testing.T) {
	p := &Player{ID: "test", HP: protocol.MaxHP}

	if p.TakeDamage(1) {
		t.Error("should not have died from 1 damage")
	}
	if p.HP != 2 {
		t.Errorf("expected HP 2, got %d", p.HP)
	}

	if !p.TakeDamage(5) {
		t.Error("should have died from 5 more damage")
	}
	if p.Alive() {
		t.Error("expected player to be dead")
	}
	if p.HP != 0 {
		t.Errorf("expected HP clamped to 0, got %d", p.HP)
	}

	if p.TakeDamage(1) {
		t.Error("dead player should not die again")
	}
}

func TestPlayerRespawn(t *testing.T) {
	p := &Player{ID: "test", HP: 0}
	p.Respawn(testRNG())
	if !p.Alive() || p.HP != protocol.MaxHP {
		t.Errorf("expected full HP after respawn, got %d", p.HP)
	}
}

func TestPlayerResetRound(t *testing.T) {
	p := &Player{ID: "a", Name: "Alpha", HP: 1, Kills: 7, Deaths: 3,
		Appearance: protocol.Appearance{HatType: protocol.HatCrown}}
	p.ResetRound(testRNG())
	if p.Kills != 0 || p.Deaths != 0 || p.HP != protocol.MaxHP {
		t.Errorf("combat state not reset: %+v", p)
	}
	if p.Name != "Alpha" || p.HatType != protocol.HatCrown {
		t.Error("identity must survive a round reset")
	}
}
