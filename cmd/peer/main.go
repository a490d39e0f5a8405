package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/DoyleJ11/kungfu-chess/internal/ascii"
	"github.com/DoyleJ11/kungfu-chess/internal/config"
	"github.com/DoyleJ11/kungfu-chess/internal/engine"
	"github.com/DoyleJ11/kungfu-chess/internal/frameloop"
	"github.com/DoyleJ11/kungfu-chess/internal/logging"
	"github.com/DoyleJ11/kungfu-chess/internal/netsync"
	"github.com/DoyleJ11/kungfu-chess/internal/prefs"
	"github.com/DoyleJ11/kungfu-chess/pkg/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// lastRoom as the room name rejoins the room saved by the previous run.
const lastRoom = "last"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load("peer", args)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store prefs.Store
	if m, err := prefs.Open(cfg.PrefsApp); err != nil {
		log.Warn("preferences unavailable", zap.Error(err))
	} else {
		store = m
	}

	code, err := pickRoom(ctx, cfg, store)
	if err != nil {
		return err
	}
	log = log.With(zap.String("room", code))

	game := engine.NewGame(engine.WithSide(cfg.PlayAs()), engine.WithLogger(log))
	session := netsync.NewSession(game, log)
	client, err := netsync.NewClient(cfg.RelayURL, code, session.Deliver,
		netsync.WithPing(cfg.PingInterval),
		netsync.WithClientLogger(log),
	)
	if err != nil {
		return err
	}
	session.Bind(client)

	if store != nil {
		p := prefs.Prefs{Room: code, Side: cfg.Side, RelayURL: cfg.RelayURL}
		if err := prefs.Save(store, p); err != nil {
			log.Warn("could not save preferences", zap.Error(err))
		}
	}

	printer := ascii.New(cfg.Color)
	show := func(g *engine.Game) {
		if err := printer.Render(os.Stdout, g); err != nil {
			log.Warn("render failed", zap.Error(err))
		}
	}

	fmt.Printf("room %s (channel %s), playing %s\n", code, protocol.Channel(code), cfg.PlayAs())
	fmt.Println(help)

	loop := frameloop.New(cfg.FrameInterval(), func(t, dt float64) {
		events := session.Frame(t, dt)
		redraw := false
		for _, e := range events {
			switch e.Type {
			case engine.EvtGameOver:
				fmt.Printf("game over, %s wins\n", e.Winner)
			case engine.EvtCaptured:
				fmt.Printf("%s %s taken on %s\n", e.Side, e.Kind, e.Square)
			}
			redraw = true
		}
		if redraw {
			show(game)
		}
	}, log)
	session.Input(netsync.Inspect{Fn: show})

	go readInput(os.Stdin, session, show, stop, log)

	// Losing the relay ends the run.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(ctx) })
	g.Go(func() error { return loop.Run(ctx) })
	if err := g.Wait(); err != nil {
		if errors.Is(err, netsync.ErrRelayClosed) {
			fmt.Println("relay closed the connection, game over")
		}
		return err
	}
	return nil
}

func pickRoom(ctx context.Context, cfg config.Config, store prefs.Store) (string, error) {
	switch cfg.Room {
	case "":
		code, err := netsync.CreateRoom(ctx, cfg.RelayURL)
		if err != nil {
			return "", err
		}
		return code, nil
	case lastRoom:
		if store == nil {
			return "", fmt.Errorf("no saved room: preferences unavailable")
		}
		p, err := prefs.Load(store)
		if err != nil {
			return "", err
		}
		if p.Room == "" {
			return "", fmt.Errorf("no saved room")
		}
		return p.Room, nil
	default:
		return cfg.Room, nil
	}
}

// readInput turns stdin lines into session commands until EOF or /quit.
func readInput(r io.Reader, s *netsync.Session, show func(*engine.Game), quit func(), log *zap.Logger) {
	defer quit()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		a, err := parseLine(sc.Text())
		switch {
		case err != nil:
			fmt.Println(err)
		case a.quit:
			return
		case a.help:
			fmt.Println(help)
		case a.board:
			s.Input(netsync.Inspect{Fn: show})
		case a.cmd != nil:
			s.Input(a.cmd)
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("stdin", zap.Error(err))
	}
}
