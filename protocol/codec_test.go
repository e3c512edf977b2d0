package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestJSONTransformFieldsAreFlat(t *testing.T) {
	data, err := JSON.Encode(PlayerMoved{ID: "abc", Transform: Transform{X: 1, QW: 1, MeshQY: 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		T string                 `json:"t"`
		D map[string]interface{} `json:"d"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw.T != "playerMoved" {
		t.Errorf("expected t=playerMoved, got %s", raw.T)
	}
	for _, key := range []string{"id", "x", "y", "z", "qx", "qy", "qz", "qw", "meshQx", "meshQy", "meshQz", "meshQw"} {
		if _, ok := raw.D[key]; !ok {
			t.Errorf("payload missing field %q: %s", key, data)
		}
	}
	if raw.D["meshQy"].(float64) != 0.5 {
		t.Errorf("meshQy = %v, want 0.5", raw.D["meshQy"])
	}
}

func TestJSONDecodeClientMessages(t *testing.T) {
	msg, err := JSON.Decode([]byte(`{"t":"hit","d":{"victimId":"v1","damage":2}}`))
	if err != nil {
		t.Fatal(err)
	}
	hit, ok := msg.(Hit)
	if !ok {
		t.Fatalf("expected Hit, got %T", msg)
	}
	if hit.VictimID != "v1" || hit.Damage != 2 {
		t.Errorf("unexpected hit %+v", hit)
	}

	msg, err = JSON.Decode([]byte(`{"t":"join","d":{"name":"Rex","hatType":"tophat","furColor":"#aa8855"}}`))
	if err != nil {
		t.Fatal(err)
	}
	join := msg.(Join)
	if join.Name != "Rex" || join.HatType != HatTophat || join.FurColor != "#aa8855" {
		t.Errorf("unexpected join %+v", join)
	}
}

func TestJSONDecodeMissingPayload(t *testing.T) {
	msg, err := JSON.Decode([]byte(`{"t":"gameReset"}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(GameReset); !ok {
		t.Fatalf("expected GameReset, got %T", msg)
	}

	msg, err = JSON.Decode([]byte(`{"t":"hit","d":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if hit := msg.(Hit); hit.Damage != 0 || hit.VictimID != "" {
		t.Errorf("expected zero hit, got %+v", hit)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := JSON.Decode(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("expected ErrEmptyFrame, got %v", err)
	}
	if _, err := JSON.Decode([]byte(`{"t":"teleport","d":{}}`)); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := JSON.Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed frame")
	}
	if _, err := Msgpack.Decode([]byte{}); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("expected ErrEmptyFrame, got %v", err)
	}
}

func TestMsgpackCarriesRosterAndScoreboard(t *testing.T) {
	roster := CurrentPlayers{
		"a": {ID: "a", Name: "Alpha", Transform: Transform{X: 3, Y: SpawnHeight, QW: 1}, HP: MaxHP},
		"b": {ID: "b", Name: "Beta", Appearance: Appearance{HatType: HatCrown}, HP: 1, Kills: 4},
	}
	data, err := Msgpack.Encode(roster)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Msgpack.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := msg.(CurrentPlayers)
	if !ok {
		t.Fatalf("expected CurrentPlayers, got %T", msg)
	}
	if got["a"].X != 3 || got["a"].Y != SpawnHeight || got["a"].HP != MaxHP {
		t.Errorf("alpha mismatch: %+v", got["a"])
	}
	if got["b"].HatType != HatCrown || got["b"].Kills != 4 {
		t.Errorf("beta mismatch: %+v", got["b"])
	}

	board := ScoreboardUpdate{{ID: "b", Name: "Beta", Kills: 4}, {ID: "a", Name: "Alpha", Deaths: 1}}
	data, err = Msgpack.Encode(board)
	if err != nil {
		t.Fatal(err)
	}
	msg, err = Msgpack.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	rows := msg.(ScoreboardUpdate)
	if len(rows) != 2 || rows[0].ID != "b" || rows[1].Deaths != 1 {
		t.Errorf("scoreboard mismatch: %+v", rows)
	}
}

func TestCodecByName(t *testing.T) {
	if CodecByName("msgpack") != Msgpack {
		t.Error("expected msgpack codec")
	}
	if CodecByName("") != JSON || CodecByName("xml") != JSON {
		t.Error("expected JSON fallback")
	}
	if !Msgpack.Binary() || JSON.Binary() {
		t.Error("binary flags inverted")
	}
}
