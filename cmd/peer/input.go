package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DoyleJ11/kungfu-chess/internal/engine"
	"github.com/DoyleJ11/kungfu-chess/internal/netsync"
)

var ErrUnknownCommand = errors.New("unknown command")

const help = `moves:    e2e4, e2 e4 or e2-e4
clicks:   click e2 (select), click e4 (send)
controls: /white /black /reset /board /help /quit`

// action is one parsed stdin line. At most one field is set.
type action struct {
	cmd   netsync.Command
	board bool
	help  bool
	quit  bool
}

func parseLine(line string) (action, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	switch line {
	case "":
		return action{}, nil
	case "/reset":
		return action{cmd: netsync.Reset{}}, nil
	case "/white":
		return action{cmd: netsync.SetSide{Side: engine.White}}, nil
	case "/black":
		return action{cmd: netsync.SetSide{Side: engine.Black}}, nil
	case "/board":
		return action{board: true}, nil
	case "/help", "?":
		return action{help: true}, nil
	case "/quit", "/exit":
		return action{quit: true}, nil
	}

	if rest, ok := strings.CutPrefix(line, "click "); ok {
		sq, err := engine.ParseSquare(strings.TrimSpace(rest))
		if err != nil {
			return action{}, err
		}
		return action{cmd: netsync.Click{Square: sq}}, nil
	}

	from, to, err := parseMove(line)
	if err != nil {
		return action{}, err
	}
	return action{cmd: netsync.LocalMove{From: from, To: to}}, nil
}

func parseMove(s string) (engine.Square, engine.Square, error) {
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	if len(s) != 4 {
		return engine.Square{}, engine.Square{}, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
	from, err := engine.ParseSquare(s[:2])
	if err != nil {
		return engine.Square{}, engine.Square{}, err
	}
	to, err := engine.ParseSquare(s[2:])
	if err != nil {
		return engine.Square{}, engine.Square{}, err
	}
	return from, to, nil
}
