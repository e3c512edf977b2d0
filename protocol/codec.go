package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrEmptyFrame  = errors.New("protocol: empty frame")
	ErrUnknownKind = errors.New("protocol: unknown message kind")
)

// Codec turns messages into websocket frames and back.
type Codec interface {
	Name() string
	// Binary reports whether frames go out as websocket binary messages.
	Binary() bool
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecByName returns the codec registered under name, falling back to JSON.
func CodecByName(name string) Codec {
	if name == Msgpack.Name() {
		return Msgpack
	}
	return JSON
}

type unmarshalFunc func(data []byte, v any) error

var decoders = map[Kind]func([]byte, unmarshalFunc) (Message, error){
	KindJoin:             decodeAs[Join],
	KindUpdateMovement:   decodeAs[UpdateMovement],
	KindShoot:            decodeAs[Shoot],
	KindHit:              decodeAs[Hit],
	KindRegister:         decodeAs[Register],
	KindLogin:            decodeAs[Login],
	KindAuth:             decodeAs[Auth],
	KindProfile:          decodeAs[Profile],
	KindWelcome:          decodeAs[Welcome],
	KindCurrentPlayers:   decodeAs[CurrentPlayers],
	KindPlayerJoined:     decodeAs[PlayerJoined],
	KindPlayerMoved:      decodeAs[PlayerMoved],
	KindPlayerShot:       decodeAs[PlayerShot],
	KindPlayerDamaged:    decodeAs[PlayerDamaged],
	KindPlayerDied:       decodeAs[PlayerDied],
	KindScoreboardUpdate: decodeAs[ScoreboardUpdate],
	KindPlayerRespawn:    decodeAs[PlayerRespawn],
	KindPlayerLeft:       decodeAs[PlayerLeft],
	KindGameWon:          decodeAs[GameWon],
	KindGameReset:        decodeAs[GameReset],
	KindAuthOK:           decodeAs[AuthOK],
	KindProfileData:      decodeAs[ProfileData],
	KindError:            decodeAs[Error],
}

// decodeAs unmarshals a payload into T. A missing payload yields T's zero
// value, which is how defaults for optional fields are applied.
func decodeAs[T Message](raw []byte, unmarshal unmarshalFunc) (Message, error) {
	var m T
	if len(raw) == 0 {
		return m, nil
	}
	if err := unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodePayload(kind Kind, raw []byte, unmarshal unmarshalFunc) (Message, error) {
	dec, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	msg, err := dec(raw, unmarshal)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", kind, err)
	}
	return msg, nil
}

type jsonCodec struct{}

// inEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type inEnvelope struct {
	T Kind            `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(msg Message) ([]byte, error) {
	return json.Marshal(Envelope{T: msg.Kind(), D: msg})
}

func (jsonCodec) Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	var env inEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	if bytes.Equal(env.D, []byte("null")) {
		env.D = nil
	}
	return decodePayload(env.T, env.D, json.Unmarshal)
}

// msgpackCodec reuses the json struct tags so both codecs share field names.
type msgpackCodec struct{}

type inPackedEnvelope struct {
	T Kind               `json:"t"`
	D msgpack.RawMessage `json:"d,omitempty"`
}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(Envelope{T: msg.Kind(), D: msg}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	var env inPackedEnvelope
	if err := msgpackUnmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	return decodePayload(env.T, env.D, msgpackUnmarshal)
}

func msgpackUnmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
