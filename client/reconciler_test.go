package client_test

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/mock/gomock"
	"pgregory.net/rapid"

	"arena/client"
	"arena/client/mocks"
	"arena/protocol"
)

func stateAt(id string, x, y, z float64) protocol.PlayerState {
	return protocol.PlayerState{
		ID:        id,
		Name:      id,
		HP:        protocol.MaxHP,
		Transform: protocol.Transform{X: x, Y: y, Z: z, QW: 1, MeshQW: 1},
	}
}

func randomTransform(t *rapid.T, label string) protocol.Transform {
	coord := rapid.Float64Range(-100, 100)
	comp := rapid.Float64Range(-1, 1)
	return protocol.Transform{
		X:      coord.Draw(t, label+".x"),
		Y:      coord.Draw(t, label+".y"),
		Z:      coord.Draw(t, label+".z"),
		MeshQX: comp.Draw(t, label+".qx"),
		MeshQY: comp.Draw(t, label+".qy"),
		MeshQZ: comp.Draw(t, label+".qz"),
		MeshQW: comp.Draw(t, label+".qw"),
	}
}

func TestAdvanceConvergesWithoutOvershoot(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := client.NewReconciler(nil)
		r.Apply(protocol.Welcome{ID: "me"})
		start := randomTransform(t, "start")
		r.Apply(protocol.PlayerJoined{PlayerState: protocol.PlayerState{ID: "p", HP: protocol.MaxHP, Transform: start}})
		r.Apply(protocol.PlayerMoved{ID: "p", Transform: randomTransform(t, "target")})

		v, ok := r.View("p")
		if !ok {
			t.Fatal("view not created")
		}
		goalPos, goalRot := v.Target()
		dt := time.Duration(rapid.IntRange(4, 50).Draw(t, "dtMillis")) * time.Millisecond

		prevDist := v.Position().Sub(goalPos).Len()
		prevDot := math.Abs(v.Rotation().Dot(goalRot))
		for i := 0; i < 2000 && !v.Settled(); i++ {
			r.Advance(dt)
			dist := v.Position().Sub(goalPos).Len()
			dot := math.Abs(v.Rotation().Dot(goalRot))
			if dist > prevDist+1e-9 {
				t.Fatalf("frame %d: distance grew from %g to %g", i, prevDist, dist)
			}
			if dot < prevDot-1e-9 {
				t.Fatalf("frame %d: rotation moved away from target (%g -> %g)", i, prevDot, dot)
			}
			prevDist, prevDot = dist, dot
		}
		if !v.Settled() {
			t.Fatalf("did not converge: at %v target %v", v.Position(), goalPos)
		}
		if v.Position() != goalPos || v.Rotation() != goalRot {
			t.Fatal("settled view is not exactly on target")
		}
	})
}

func TestRotationTakesShortArc(t *testing.T) {
	r := client.NewReconciler(nil)
	r.Apply(protocol.PlayerJoined{PlayerState: stateAt("p", 0, 0, 0)})

	// -identity is the same orientation; nothing should visibly turn
	r.Apply(protocol.PlayerMoved{ID: "p", Transform: protocol.Transform{MeshQW: -1}})
	v, _ := r.View("p")
	r.Advance(16 * time.Millisecond)
	if got := math.Abs(v.Rotation().W); got < 0.999999 {
		t.Errorf("expected no visible rotation, got %v", v.Rotation())
	}
}

func TestFirstSightingDoesNotInterpolate(t *testing.T) {
	r := client.NewReconciler(nil)
	r.Apply(protocol.Welcome{ID: "me"})
	r.Apply(protocol.CurrentPlayers{
		"me": stateAt("me", 1, 2, 3),
		"p":  stateAt("p", 40, 2, -40),
	})
	if r.Views() != 1 {
		t.Fatalf("expected one remote view, got %d", r.Views())
	}
	v, _ := r.View("p")
	if v.Position() != (mgl64.Vec3{40, 2, -40}) || !v.Settled() {
		t.Errorf("expected view seeded at roster position, got %v", v.Position())
	}
	if !r.Local().Joined || r.Local().Position() != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("expected local player placed from roster, got %+v", r.Local())
	}
}

func TestDeathFreezesUntilRespawn(t *testing.T) {
	ctrl := gomock.NewController(t)
	av := mocks.NewMockAvatar(ctrl)
	killer := mocks.NewMockAvatar(ctrl)
	avatars := map[string]client.Avatar{"victim": av, "killer": killer}
	r := client.NewReconciler(func(ps protocol.PlayerState) client.Avatar { return avatars[ps.ID] })

	killer.EXPECT().SetTransform(gomock.Any(), gomock.Any()).AnyTimes()
	gomock.InOrder(
		av.EXPECT().SetTransform(mgl64.Vec3{10, 0, 0}, gomock.Any()),
		av.EXPECT().Die(mgl64.Vec3{1, 0, 0}),
		av.EXPECT().Revive(),
		av.EXPECT().SetTransform(mgl64.Vec3{5, 2, -5}, gomock.Any()),
	)

	r.Apply(protocol.Welcome{ID: "me"})
	r.Apply(protocol.PlayerJoined{PlayerState: stateAt("killer", 0, 0, 0)})
	r.Apply(protocol.PlayerJoined{PlayerState: stateAt("victim", 10, 0, 0)})
	r.Apply(protocol.PlayerDied{VictimID: "victim", KillerID: "killer"})

	// stale movement while dead must not move the corpse
	r.Apply(protocol.PlayerMoved{ID: "victim", Transform: protocol.Transform{X: 99, MeshQW: 1}})
	r.Advance(100 * time.Millisecond)
	v, _ := r.View("victim")
	if !v.Dead() || v.Position() != (mgl64.Vec3{10, 0, 0}) {
		t.Fatalf("dead view moved to %v", v.Position())
	}

	// a duplicate death is ignored
	r.Apply(protocol.PlayerDied{VictimID: "victim", KillerID: "killer"})

	r.Apply(protocol.PlayerRespawn{ID: "victim", X: 5, Y: 2, Z: -5, HP: protocol.MaxHP})
	if v.Dead() || !v.Settled() || v.Position() != (mgl64.Vec3{5, 2, -5}) {
		t.Errorf("expected snap to respawn point, got %v dead=%v", v.Position(), v.Dead())
	}
}

func TestDamageFlashesAvatar(t *testing.T) {
	ctrl := gomock.NewController(t)
	av := mocks.NewMockAvatar(ctrl)
	r := client.NewReconciler(func(protocol.PlayerState) client.Avatar { return av })

	av.EXPECT().SetTransform(gomock.Any(), gomock.Any())
	av.EXPECT().Flash(2)

	r.Apply(protocol.PlayerJoined{PlayerState: stateAt("p", 0, 0, 0)})
	r.Apply(protocol.PlayerDamaged{ID: "p", HP: 2, AttackerID: "q"})
	r.Apply(protocol.PlayerDamaged{ID: "unknown", HP: 1})
}

func TestLeftDestroysView(t *testing.T) {
	ctrl := gomock.NewController(t)
	av := mocks.NewMockAvatar(ctrl)
	r := client.NewReconciler(func(protocol.PlayerState) client.Avatar { return av })

	av.EXPECT().SetTransform(gomock.Any(), gomock.Any())
	av.EXPECT().Destroy()

	r.Apply(protocol.PlayerJoined{PlayerState: stateAt("p", 0, 0, 0)})
	r.Apply(protocol.PlayerLeft{ID: "p"})
	r.Apply(protocol.PlayerLeft{ID: "p"})
	r.Apply(protocol.PlayerMoved{ID: "p", Transform: protocol.Transform{X: 5}})
	r.Advance(time.Second)

	if _, ok := r.View("p"); ok {
		t.Error("expected view removed")
	}
}

func TestLocalStateFollowsServer(t *testing.T) {
	r := client.NewReconciler(nil)
	r.Apply(protocol.Welcome{ID: "me"})
	r.Apply(protocol.CurrentPlayers{"me": stateAt("me", 0, 2, 0)})

	if !r.MoveLocal(protocol.Transform{X: 3, Y: 2, MeshQW: 1}) {
		t.Fatal("expected local movement while alive")
	}
	r.Apply(protocol.PlayerDamaged{ID: "me", HP: 1})
	if r.Local().HP != 1 {
		t.Errorf("expected hp 1, got %d", r.Local().HP)
	}

	r.Apply(protocol.PlayerDied{VictimID: "me", KillerID: "p"})
	if !r.Local().Dead || r.Local().HP != 0 {
		t.Fatalf("expected local death, got %+v", r.Local())
	}
	if r.MoveLocal(protocol.Transform{X: 9}) {
		t.Error("moved while dead")
	}

	r.Apply(protocol.PlayerRespawn{ID: "me", X: -7, Y: 2, Z: 7, HP: protocol.MaxHP})
	if r.Local().Dead || r.Local().HP != protocol.MaxHP {
		t.Errorf("expected respawned local player, got %+v", r.Local())
	}
	if r.Local().Position() != (mgl64.Vec3{-7, 2, 7}) {
		t.Errorf("expected respawn position, got %v", r.Local().Position())
	}
}

func TestWinOverlay(t *testing.T) {
	r := client.NewReconciler(nil)
	r.Apply(protocol.ScoreboardUpdate{{ID: "a", Name: "A", Kills: 20}})
	r.Apply(protocol.GameWon{WinnerID: "a", WinnerName: "A", Kills: 20})
	if w := r.Winner(); w == nil || w.WinnerName != "A" {
		t.Fatalf("expected winner A, got %+v", w)
	}
	if len(r.Scoreboard()) != 1 {
		t.Errorf("expected scoreboard kept, got %v", r.Scoreboard())
	}
	r.Apply(protocol.GameReset{})
	if r.Winner() != nil {
		t.Error("expected overlay dismissed on reset")
	}
}

func TestDrainDoesNotBlock(t *testing.T) {
	events := make(chan protocol.Message, 4)
	events <- protocol.Welcome{ID: "me"}
	events <- protocol.PlayerJoined{PlayerState: stateAt("p", 0, 0, 0)}
	events <- protocol.PlayerLeft{ID: "p"}

	r := client.NewReconciler(nil)
	if n := r.Drain(events); n != 3 {
		t.Errorf("expected 3 events, got %d", n)
	}
	if n := r.Drain(events); n != 0 {
		t.Errorf("expected empty drain, got %d", n)
	}
	close(events)
	if n := r.Drain(events); n != 0 {
		t.Errorf("expected closed channel to drain nothing, got %d", n)
	}
}

func TestSetSmoothingChangesBlendRate(t *testing.T) {
	gap := func(r *client.Reconciler) float64 {
		r.Apply(protocol.PlayerJoined{PlayerState: stateAt("p", 0, 0, 0)})
		r.Apply(protocol.PlayerMoved{ID: "p", Transform: protocol.Transform{X: 10, MeshQW: 1}})
		r.Advance(20 * time.Millisecond)
		v, _ := r.View("p")
		return 10 - v.Position().X()
	}

	base := gap(client.NewReconciler(nil))

	fast := client.NewReconciler(nil)
	fast.SetSmoothing(4 * client.DefaultSmoothing)
	if g := gap(fast); g >= base {
		t.Errorf("expected a faster rate to close more of the gap: %g >= %g", g, base)
	}

	ignored := client.NewReconciler(nil)
	ignored.SetSmoothing(0)
	if g := gap(ignored); g != base {
		t.Errorf("expected a non-positive rate to be ignored, got gap %g want %g", g, base)
	}
}
