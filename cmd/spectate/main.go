// Command spectate shows a live arena scoreboard and kill feed in the
// terminal. It connects without joining, so it never appears in the round.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/websocket"
	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"arena/protocol"
)

const (
	feedSize  = 8
	nameWidth = 18
)

type state struct {
	server string
	board  protocol.ScoreboardUpdate
	feed   []string
	winner string
	status string
}

func (s *state) apply(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Welcome:
		s.status = "watching as " + m.ID
	case protocol.ScoreboardUpdate:
		s.board = m
	case protocol.PlayerDied:
		s.push(fmt.Sprintf("%s fragged %s", m.KillerName, m.VictimName))
	case protocol.PlayerJoined:
		s.push(m.Name + " joined")
	case protocol.GameWon:
		s.winner = fmt.Sprintf("%s wins with %d kills", m.WinnerName, m.Kills)
		s.push(s.winner)
	case protocol.GameReset:
		s.winner = ""
		s.push("new round")
	}
}

func (s *state) push(line string) {
	s.feed = append(s.feed, line)
	if len(s.feed) > feedSize {
		s.feed = s.feed[len(s.feed)-feedSize:]
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := "ws://localhost:8080/ws"
	if v := os.Getenv("SERVER_URL"); v != "" {
		server = v
	}
	if len(os.Args) > 1 {
		server = os.Args[1]
	}

	if err := run(ctx, server); err != nil {
		slog.Error("spectate", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, server string) error {
	u, err := url.Parse(server)
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}
	q := u.Query()
	q.Set("codec", protocol.JSON.Name())
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan protocol.Message, 64)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			msg, err := protocol.JSON.Decode(data)
			if err != nil {
				continue
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	keys := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case keys <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	defer termbox.Interrupt()

	st := &state{server: u.Host, status: "connecting"}
	render(st)
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		case err := <-readErr:
			if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		case msg := <-msgs:
			st.apply(msg)
			render(st)
		case ev := <-keys:
			switch {
			case ev.Type == termbox.EventKey && (ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q'):
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			case ev.Type == termbox.EventResize:
				render(st)
			case ev.Type == termbox.EventError:
				return ev.Err
			}
		}
	}
}

func render(s *state) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	w, h := termbox.Size()

	drawText(0, 0, w, "arena @ "+s.server, termbox.ColorDefault|termbox.AttrBold)
	drawText(0, 1, w, s.status+"  (q to quit)", termbox.ColorDefault)

	y := 3
	drawText(0, y, w, fmt.Sprintf("%-3s %s %5s %6s", "#", runewidth.FillRight("NAME", nameWidth), "KILLS", "DEATHS"), termbox.ColorCyan)
	y++
	for i, row := range s.board {
		if y >= h-feedSize-2 {
			break
		}
		name := runewidth.FillRight(runewidth.Truncate(row.Name, nameWidth, "…"), nameWidth)
		fg := termbox.ColorDefault
		if i == 0 && row.Kills > 0 {
			fg = termbox.ColorYellow
		}
		drawText(0, y, w, fmt.Sprintf("%-3d %s %5d %6d", i+1, name, row.Kills, row.Deaths), fg)
		y++
	}

	if s.winner != "" {
		y++
		drawText(0, y, w, s.winner, termbox.ColorGreen|termbox.AttrBold)
		y++
	}

	y++
	for _, line := range s.feed {
		if y >= h {
			break
		}
		drawText(0, y, w, line, termbox.ColorRed)
		y++
	}
	termbox.Flush()
}

// drawText writes s at (x, y), clipped to width cells.
func drawText(x, y, width int, s string, fg termbox.Attribute) {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if x+rw > width {
			return
		}
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x += rw
	}
}
