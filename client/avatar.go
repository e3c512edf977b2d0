// Package client holds the client-side half of the arena: the connection to
// the server, the movement send throttle and reconciliation of remote
// avatars toward the latest authoritative state.
package client

import (
	"github.com/go-gl/mathgl/mgl64"

	"arena/protocol"
)

//go:generate go tool mockgen -destination=./mocks/avatar_mock.go -package=mocks . Avatar

// Avatar is the presentation of one player. Every variant, local or remote,
// supports the same feedback so the reconciler never branches on type.
type Avatar interface {
	SetTransform(pos mgl64.Vec3, rot mgl64.Quat)
	// Die starts the death presentation. impact points away from the killer.
	Die(impact mgl64.Vec3)
	Revive()
	// Flash plays hit feedback; hp is the health left after the hit.
	Flash(hp int)
	Destroy()
}

// AvatarFactory builds the presentation for a player on first sighting.
type AvatarFactory func(p protocol.PlayerState) Avatar

// NopAvatar renders nothing. Headless clients such as bots use it.
type NopAvatar struct{}

func (NopAvatar) SetTransform(mgl64.Vec3, mgl64.Quat) {}
func (NopAvatar) Die(mgl64.Vec3)                      {}
func (NopAvatar) Revive()                             {}
func (NopAvatar) Flash(int)                           {}
func (NopAvatar) Destroy()                            {}

// NopFactory hands out NopAvatars.
func NopFactory(protocol.PlayerState) Avatar { return NopAvatar{} }

func position(t protocol.Transform) mgl64.Vec3 {
	return mgl64.Vec3{t.X, t.Y, t.Z}
}

// meshRotation returns the visual orientation, identity when unset.
func meshRotation(t protocol.Transform) mgl64.Quat {
	q := mgl64.Quat{W: t.MeshQW, V: mgl64.Vec3{t.MeshQX, t.MeshQY, t.MeshQZ}}
	if q.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
