// Package protocol defines the event catalogue exchanged between arena clients
// and the server, and the codecs that put it on the wire.
package protocol

// Kind names a message on the wire (the envelope's "t" field).
type Kind string

// Client -> Server
const (
	KindJoin           Kind = "join"
	KindUpdateMovement Kind = "updateMovement"
	KindShoot          Kind = "shoot"
	KindHit            Kind = "hit"
	KindRegister       Kind = "register"
	KindLogin          Kind = "login"
	KindAuth           Kind = "auth"
	KindProfile        Kind = "profile"
)

// Server -> Client
const (
	KindWelcome          Kind = "welcome"        // connection id, sent on connect
	KindCurrentPlayers   Kind = "currentPlayers" // roster, to the joining client
	KindPlayerJoined     Kind = "playerJoined"
	KindPlayerMoved      Kind = "playerMoved"
	KindPlayerShot       Kind = "playerShot"
	KindPlayerDamaged    Kind = "playerDamaged"
	KindPlayerDied       Kind = "playerDied"
	KindScoreboardUpdate Kind = "scoreboardUpdate"
	KindPlayerRespawn    Kind = "playerRespawn"
	KindPlayerLeft       Kind = "playerLeft"
	KindGameWon          Kind = "gameWon"
	KindGameReset        Kind = "gameReset"
	KindAuthOK           Kind = "authOk"
	KindProfileData      Kind = "profileData"
	KindError            Kind = "error"
)

// Message is implemented by every payload type in the catalogue.
type Message interface {
	Kind() Kind
}

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T Kind `json:"t"`
	D any  `json:"d,omitempty"`
}

// Vec3 is a point in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Transform carries the body position and orientation plus the visual mesh
// orientation, which may diverge from the body's.
type Transform struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	QX     float64 `json:"qx"`
	QY     float64 `json:"qy"`
	QZ     float64 `json:"qz"`
	QW     float64 `json:"qw"`
	MeshQX float64 `json:"meshQx"`
	MeshQY float64 `json:"meshQy"`
	MeshQZ float64 `json:"meshQz"`
	MeshQW float64 `json:"meshQw"`
}

// HatStyle is chosen client-side; the server relays it without checking.
type HatStyle string

const (
	HatNone      HatStyle = "none"
	HatTophat    HatStyle = "tophat"
	HatCap       HatStyle = "cap"
	HatBeanie    HatStyle = "beanie"
	HatCowboy    HatStyle = "cowboy"
	HatWizard    HatStyle = "wizard"
	HatCrown     HatStyle = "crown"
	HatPropeller HatStyle = "propeller"
)

// Appearance is relayed verbatim to other clients.
type Appearance struct {
	HatType   HatStyle `json:"hatType"`
	HatColor  string   `json:"hatColor"`
	FurColor  string   `json:"furColor"`
	CoatColor string   `json:"coatColor"`
}

// PlayerState is the full session state of one player as seen by clients
type PlayerState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Transform
	Appearance
	HP     int `json:"hp"`
	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`
}

// ScoreEntry is one scoreboard row
type ScoreEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

// Join is sent once a client wants an avatar in the arena
type Join struct {
	Name string `json:"name"`
	Appearance
}

// UpdateMovement is sent by the client at the throttled send rate
type UpdateMovement struct {
	Transform
}

// Shoot announces a locally fired projectile
type Shoot struct {
	Origin Vec3 `json:"origin"`
	Target Vec3 `json:"target"`
}

// Hit reports a locally detected hit on another player
type Hit struct {
	VictimID string `json:"victimId"`
	Damage   int    `json:"damage"`
}

// Register creates an account
type Register struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an existing account
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Auth resumes an account from a previously issued token
type Auth struct {
	Token string `json:"token"`
}

// Profile asks for the career stats of the authenticated account
type Profile struct{}

// Welcome tells a freshly connected client its connection id
type Welcome struct {
	ID string `json:"id"`
}

// CurrentPlayers is the roster handed to a joining client, keyed by connection id
type CurrentPlayers map[string]PlayerState

// PlayerJoined announces a new session to everyone else
type PlayerJoined struct {
	PlayerState
}

// PlayerMoved relays a movement update verbatim
type PlayerMoved struct {
	ID string `json:"id"`
	Transform
}

// PlayerShot relays a shot to everyone but the shooter
type PlayerShot struct {
	ShooterID string `json:"shooterId"`
	Origin    Vec3   `json:"origin"`
	Target    Vec3   `json:"target"`
}

// PlayerDamaged is broadcast on every non-lethal hit
type PlayerDamaged struct {
	ID         string `json:"id"`
	HP         int    `json:"hp"`
	AttackerID string `json:"attackerId"`
}

// PlayerDied is broadcast to all players on a lethal hit
type PlayerDied struct {
	VictimID   string `json:"victimId"`
	KillerID   string `json:"killerId"`
	KillerName string `json:"killerName"`
	VictimName string `json:"victimName"`
}

// ScoreboardUpdate is ordered by kills desc, deaths asc
type ScoreboardUpdate []ScoreEntry

// PlayerRespawn places a player back in the world at full health
type PlayerRespawn struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	HP int     `json:"hp"`
}

// PlayerLeft announces a disconnect
type PlayerLeft struct {
	ID string `json:"id"`
}

// GameWon ends the round
type GameWon struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	Kills      int    `json:"kills"`
}

// GameReset starts a new round; clients dismiss any win overlay
type GameReset struct{}

// AuthOK confirms register/login/auth
type AuthOK struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	AccountID int64  `json:"accountId"`
}

// ProfileData carries career stats
type ProfileData struct {
	Username string  `json:"username"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Wins     int     `json:"wins"`
	Rounds   int     `json:"rounds"`
	Playtime float64 `json:"playtime"`
}

// Error sends a human readable failure to the requester
type Error struct {
	Msg string `json:"msg"`
}

func (Join) Kind() Kind             { return KindJoin }
func (UpdateMovement) Kind() Kind   { return KindUpdateMovement }
func (Shoot) Kind() Kind            { return KindShoot }
func (Hit) Kind() Kind              { return KindHit }
func (Register) Kind() Kind         { return KindRegister }
func (Login) Kind() Kind            { return KindLogin }
func (Auth) Kind() Kind             { return KindAuth }
func (Profile) Kind() Kind          { return KindProfile }
func (Welcome) Kind() Kind          { return KindWelcome }
func (CurrentPlayers) Kind() Kind   { return KindCurrentPlayers }
func (PlayerJoined) Kind() Kind     { return KindPlayerJoined }
func (PlayerMoved) Kind() Kind      { return KindPlayerMoved }
func (PlayerShot) Kind() Kind       { return KindPlayerShot }
func (PlayerDamaged) Kind() Kind    { return KindPlayerDamaged }
func (PlayerDied) Kind() Kind       { return KindPlayerDied }
func (ScoreboardUpdate) Kind() Kind { return KindScoreboardUpdate }
func (PlayerRespawn) Kind() Kind    { return KindPlayerRespawn }
func (PlayerLeft) Kind() Kind       { return KindPlayerLeft }
func (GameWon) Kind() Kind          { return KindGameWon }
func (GameReset) Kind() Kind        { return KindGameReset }
func (AuthOK) Kind() Kind           { return KindAuthOK }
func (ProfileData) Kind() Kind      { return KindProfileData }
func (Error) Kind() Kind            { return KindError }
