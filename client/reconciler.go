package client

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"arena/protocol"
)

const (
	// DefaultSmoothing is the exponential blend rate per second. At 12/s a
	// remote avatar closes ~40% of the gap per 25 Hz update.
	DefaultSmoothing = 12.0

	// Below these the rendered state snaps onto the target.
	snapDistance = 1e-3
	snapAngle    = 1e-6
)

// RemoteView is the presentation state of another player.
type RemoteView struct {
	ID   string
	Name string

	pos       mgl64.Vec3
	rot       mgl64.Quat
	targetPos mgl64.Vec3
	targetRot mgl64.Quat
	dead      bool
	avatar    Avatar
}

// Position returns the rendered position.
func (v *RemoteView) Position() mgl64.Vec3 { return v.pos }

// Rotation returns the rendered mesh orientation.
func (v *RemoteView) Rotation() mgl64.Quat { return v.rot }

// Target returns the latest authoritative position and orientation.
func (v *RemoteView) Target() (mgl64.Vec3, mgl64.Quat) { return v.targetPos, v.targetRot }

func (v *RemoteView) Dead() bool { return v.dead }

// Settled reports whether the rendered state has reached the target.
func (v *RemoteView) Settled() bool {
	return v.pos == v.targetPos && v.rot == v.targetRot
}

// LocalState mirrors what the server says about the local player. Health
// and death are never decided locally.
type LocalState struct {
	ID     string
	HP     int
	Dead   bool
	Joined bool

	pos    mgl64.Vec3
	rot    mgl64.Quat
	avatar Avatar
}

// Position returns the local player's current position.
func (l *LocalState) Position() mgl64.Vec3 { return l.pos }

// Reconciler folds server events into presentation state. It is not safe for
// concurrent use; drive it from the render loop.
type Reconciler struct {
	rate      float64
	newAvatar AvatarFactory

	local  LocalState
	views  map[string]*RemoteView
	board  protocol.ScoreboardUpdate
	winner *protocol.GameWon
}

func NewReconciler(newAvatar AvatarFactory) *Reconciler {
	if newAvatar == nil {
		newAvatar = NopFactory
	}
	return &Reconciler{
		rate:      DefaultSmoothing,
		newAvatar: newAvatar,
		views:     make(map[string]*RemoteView),
		local:     LocalState{HP: protocol.MaxHP, rot: mgl64.QuatIdent(), avatar: NopAvatar{}},
	}
}

// SetSmoothing overrides the blend rate per second.
func (r *Reconciler) SetSmoothing(rate float64) {
	if rate > 0 {
		r.rate = rate
	}
}

func (r *Reconciler) Local() *LocalState { return &r.local }

// View returns the remote view for id.
func (r *Reconciler) View(id string) (*RemoteView, bool) {
	v, ok := r.views[id]
	return v, ok
}

// Views returns the number of remote players on screen.
func (r *Reconciler) Views() int { return len(r.views) }

// ForEachView calls fn for every remote view in no particular order.
func (r *Reconciler) ForEachView(fn func(*RemoteView)) {
	for _, v := range r.views {
		fn(v)
	}
}

func (r *Reconciler) Scoreboard() protocol.ScoreboardUpdate { return r.board }

// Winner returns the win overlay to show, nil while a round is running.
func (r *Reconciler) Winner() *protocol.GameWon { return r.winner }

// Apply records an authoritative event. It only moves targets; rendered
// state follows in Advance.
func (r *Reconciler) Apply(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Welcome:
		r.local.ID = m.ID
	case protocol.CurrentPlayers:
		for id, ps := range m {
			if id == r.local.ID {
				r.placeLocal(ps)
				continue
			}
			r.sight(ps)
		}
	case protocol.PlayerJoined:
		if m.ID == r.local.ID {
			r.placeLocal(m.PlayerState)
			return
		}
		r.sight(m.PlayerState)
	case protocol.PlayerMoved:
		if v, ok := r.views[m.ID]; ok {
			v.targetPos = position(m.Transform)
			v.targetRot = meshRotation(m.Transform)
		}
	case protocol.PlayerDamaged:
		if m.ID == r.local.ID {
			r.local.HP = m.HP
			r.local.avatar.Flash(m.HP)
		} else if v, ok := r.views[m.ID]; ok {
			v.avatar.Flash(m.HP)
		}
	case protocol.PlayerDied:
		r.died(m)
	case protocol.PlayerRespawn:
		r.respawned(m)
	case protocol.PlayerLeft:
		if v, ok := r.views[m.ID]; ok {
			v.avatar.Destroy()
			delete(r.views, m.ID)
		}
	case protocol.ScoreboardUpdate:
		r.board = m
	case protocol.GameWon:
		r.winner = &m
	case protocol.GameReset:
		r.winner = nil
	}
}

// Drain applies every event already queued on events without blocking.
func (r *Reconciler) Drain(events <-chan protocol.Message) int {
	n := 0
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return n
			}
			r.Apply(msg)
			n++
		default:
			return n
		}
	}
}

// Advance moves every live remote view toward its target by one frame.
func (r *Reconciler) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	alpha := 1 - math.Exp(-r.rate*dt.Seconds())
	for _, v := range r.views {
		if v.dead {
			continue
		}
		v.pos = blendPosition(v.pos, v.targetPos, alpha)
		v.rot = blendRotation(v.rot, v.targetRot, alpha)
		v.avatar.SetTransform(v.pos, v.rot)
	}
}

// MoveLocal applies local input immediately; the local avatar is never
// interpolated. Returns false while the server has the player dead.
func (r *Reconciler) MoveLocal(t protocol.Transform) bool {
	if r.local.Dead || !r.local.Joined {
		return false
	}
	r.local.pos = position(t)
	r.local.rot = meshRotation(t)
	r.local.avatar.SetTransform(r.local.pos, r.local.rot)
	return true
}

func (r *Reconciler) placeLocal(ps protocol.PlayerState) {
	if !r.local.Joined {
		r.local.avatar = r.newAvatar(ps)
	}
	r.local.Joined = true
	r.local.HP = ps.HP
	r.local.Dead = ps.HP <= 0
	r.local.pos = position(ps.Transform)
	r.local.rot = meshRotation(ps.Transform)
	r.local.avatar.SetTransform(r.local.pos, r.local.rot)
}

// sight creates a view on first sighting, seeded at the reported state so it
// never interpolates in from the origin.
func (r *Reconciler) sight(ps protocol.PlayerState) {
	v, ok := r.views[ps.ID]
	if !ok {
		v = &RemoteView{ID: ps.ID, avatar: r.newAvatar(ps)}
		r.views[ps.ID] = v
	}
	v.Name = ps.Name
	v.targetPos = position(ps.Transform)
	v.targetRot = meshRotation(ps.Transform)
	v.pos, v.rot = v.targetPos, v.targetRot
	v.avatar.SetTransform(v.pos, v.rot)
	if ps.HP <= 0 && !v.dead {
		v.dead = true
		v.avatar.Die(defaultImpact)
	}
}

func (r *Reconciler) died(m protocol.PlayerDied) {
	if m.VictimID == r.local.ID {
		if r.local.Dead || !r.local.Joined {
			return
		}
		r.local.Dead = true
		r.local.HP = 0
		r.local.avatar.Die(r.impact(m.KillerID, r.local.pos))
		return
	}
	v, ok := r.views[m.VictimID]
	if !ok || v.dead {
		return
	}
	v.dead = true
	v.avatar.Die(r.impact(m.KillerID, v.pos))
}

func (r *Reconciler) respawned(m protocol.PlayerRespawn) {
	pos := mgl64.Vec3{m.X, m.Y, m.Z}
	if m.ID == r.local.ID {
		if !r.local.Joined {
			return
		}
		r.local.Dead = false
		r.local.HP = m.HP
		r.local.pos = pos
		r.local.avatar.Revive()
		r.local.avatar.SetTransform(r.local.pos, r.local.rot)
		return
	}
	v, ok := r.views[m.ID]
	if !ok {
		return
	}
	// snap, never blend across the map
	v.dead = false
	v.pos, v.targetPos = pos, pos
	v.targetRot = v.rot
	v.avatar.Revive()
	v.avatar.SetTransform(v.pos, v.rot)
}

var defaultImpact = mgl64.Vec3{0, 0, 1}

// impact synthesizes a knockback direction from killer to victim.
func (r *Reconciler) impact(killerID string, victim mgl64.Vec3) mgl64.Vec3 {
	var from mgl64.Vec3
	switch {
	case killerID == r.local.ID:
		from = r.local.pos
	default:
		k, ok := r.views[killerID]
		if !ok {
			return defaultImpact
		}
		from = k.pos
	}
	dir := victim.Sub(from)
	if dir.Len() < snapDistance {
		return defaultImpact
	}
	return dir.Normalize()
}

func blendPosition(from, to mgl64.Vec3, alpha float64) mgl64.Vec3 {
	next := from.Add(to.Sub(from).Mul(alpha))
	if to.Sub(next).Len() < snapDistance {
		return to
	}
	return next
}

// blendRotation slerps along the shorter arc.
func blendRotation(from, to mgl64.Quat, alpha float64) mgl64.Quat {
	target := to
	if from.Dot(to) < 0 {
		target = to.Scale(-1)
	}
	next := mgl64.QuatSlerp(from, target, alpha).Normalize()
	if 1-math.Abs(next.Dot(to)) < snapAngle {
		return to
	}
	return next
}
