// Command bot connects headless players to an arena server. They circle the
// spawn area, fire at whoever is nearest and report some of those shots as
// hits, which is enough to drive rounds to completion for load and soak
// testing.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"arena/client"
	"arena/protocol"
)

const (
	frameRate   = 30
	fireEvery   = 1500 * time.Millisecond
	fireRange   = 40.0
	hitChance   = 0.5
	circleSpeed = 0.6 // radians per second
)

var hats = []protocol.HatStyle{
	protocol.HatNone, protocol.HatTophat, protocol.HatCap, protocol.HatBeanie,
	protocol.HatCowboy, protocol.HatWizard, protocol.HatCrown, protocol.HatPropeller,
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverURL := getEnvDefault("SERVER_URL", "ws://localhost:8080/ws")
	codec := protocol.CodecByName(getEnvDefault("BOT_CODEC", "json"))
	botCountStr := getEnvDefault("BOT_COUNT", "3")
	botCount, err := strconv.Atoi(botCountStr)
	if err != nil || botCount < 1 {
		slog.Error("invalid BOT_COUNT", "value", botCountStr)
		os.Exit(1)
	}

	slog.Info("starting bots", "count", botCount, "server", serverURL, "codec", codec.Name())

	var wg sync.WaitGroup
	for i := range botCount {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runBot(ctx, serverURL, codec, id)
		}(i)
	}

	wg.Wait()
	slog.Info("all bots stopped")
}

func runBot(ctx context.Context, serverURL string, codec protocol.Codec, id int) {
	logger := slog.With("botID", id)
	for {
		if ctx.Err() != nil {
			return
		}
		err := botSession(ctx, serverURL, codec, id, logger)
		if err != nil && ctx.Err() == nil {
			logger.Warn("bot session ended, reconnecting", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
		}
	}
}

type bot struct {
	name   string
	conn   *client.Conn
	view   *client.Reconciler
	move   *client.MovementThrottle
	rng    *rand.Rand
	logger *slog.Logger

	joined   bool
	angle    float64
	radius   float64
	lastTick time.Time
	lastFire time.Time
}

func botSession(ctx context.Context, serverURL string, codec protocol.Codec, id int, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, err := client.Dial(ctx, serverURL, codec)
	if err != nil {
		return err
	}
	runErr := make(chan error, 1)
	go func() { runErr <- conn.Run(ctx) }()
	logger.Info("connected")

	seed := uint64(time.Now().UnixNano())
	b := &bot{
		name:   fmt.Sprintf("Bot-%d", id),
		conn:   conn,
		view:   client.NewReconciler(client.NopFactory),
		move:   client.NewMovementThrottle(protocol.SendInterval),
		rng:    rand.New(rand.NewPCG(seed, uint64(id))),
		logger: logger,
	}
	b.radius = 10 + b.rng.Float64()*30
	b.angle = b.rng.Float64() * 2 * math.Pi

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-runErr:
			return closed(err)
		case msg, ok := <-conn.Events():
			if !ok {
				return closed(<-runErr)
			}
			b.view.Apply(msg)
			if err := b.observe(msg); err != nil {
				return err
			}
		case now := <-ticker.C:
			if err := b.tick(now); err != nil {
				return err
			}
		}
	}
}

func (b *bot) observe(msg protocol.Message) error {
	me := b.view.Local().ID
	switch m := msg.(type) {
	case protocol.Welcome:
		look := protocol.Appearance{
			HatType:   hats[b.rng.IntN(len(hats))],
			HatColor:  randomColor(b.rng),
			FurColor:  randomColor(b.rng),
			CoatColor: randomColor(b.rng),
		}
		if err := b.conn.Join(b.name, look); err != nil {
			return err
		}
		b.joined = true
		b.logger.Info("joined", "id", m.ID)
	case protocol.PlayerDied:
		if m.KillerID == me {
			b.logger.Info("scored", "victim", m.VictimName)
		} else if m.VictimID == me {
			b.logger.Info("killed", "by", m.KillerName)
		}
	case protocol.GameWon:
		b.logger.Info("round won", "winner", m.WinnerName, "kills", m.Kills)
	case protocol.Error:
		b.logger.Warn("server error", "msg", m.Msg)
	}
	return nil
}

func (b *bot) tick(now time.Time) error {
	dt := time.Second / frameRate
	if !b.lastTick.IsZero() {
		dt = now.Sub(b.lastTick)
	}
	b.lastTick = now
	b.view.Advance(dt)

	if !b.joined {
		return nil
	}
	b.angle += circleSpeed * dt.Seconds()
	yaw := mgl64.QuatRotate(b.angle+math.Pi/2, mgl64.Vec3{0, 1, 0})
	t := protocol.Transform{
		X:  math.Cos(b.angle) * b.radius,
		Y:  protocol.SpawnHeight,
		Z:  math.Sin(b.angle) * b.radius,
		QX: yaw.V.X(), QY: yaw.V.Y(), QZ: yaw.V.Z(), QW: yaw.W,
		MeshQX: yaw.V.X(), MeshQY: yaw.V.Y(), MeshQZ: yaw.V.Z(), MeshQW: yaw.W,
	}
	if b.view.MoveLocal(t) {
		b.move.Offer(t)
	}
	if sample, ok := b.move.Due(now); ok {
		if err := dropped(b.conn.SendMovement(sample)); err != nil {
			return err
		}
	}

	if now.Sub(b.lastFire) >= fireEvery && !b.view.Local().Dead && b.view.Winner() == nil {
		b.lastFire = now
		return b.fire()
	}
	return nil
}

// fire shoots at the nearest live player in range.
func (b *bot) fire() error {
	origin := b.view.Local().Position()
	var target *client.RemoteView
	best := fireRange
	b.view.ForEachView(func(v *client.RemoteView) {
		if v.Dead() {
			return
		}
		if d := v.Position().Sub(origin).Len(); d < best {
			best, target = d, v
		}
	})
	if target == nil {
		return nil
	}
	at := target.Position()
	err := b.conn.Shoot(
		protocol.Vec3{X: origin.X(), Y: origin.Y(), Z: origin.Z()},
		protocol.Vec3{X: at.X(), Y: at.Y(), Z: at.Z()},
	)
	if err := dropped(err); err != nil {
		return err
	}
	if b.rng.Float64() < hitChance {
		return dropped(b.conn.ReportHit(target.ID, protocol.DefaultDamage))
	}
	return nil
}

// closed turns a clean server-side close into an error so the bot backs off
// before reconnecting.
func closed(err error) error {
	if err == nil {
		return errors.New("connection closed by server")
	}
	return err
}

// dropped ignores a full send queue; the next frame sends fresher state.
func dropped(err error) error {
	if errors.Is(err, client.ErrBackpressure) {
		return nil
	}
	return err
}

func randomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%06x", rng.IntN(0x1000000))
}
