package ascii

import (
	"fmt"
	"io"
	"strings"

	"github.com/DoyleJ11/kungfu-chess/internal/engine"
	"github.com/fatih/color"
)

// View is what the printer reads from a game.
type View interface {
	Board() engine.Board
	Transforms() []engine.Transform
	Selection() (engine.Square, bool)
}

type Theme struct {
	White    *color.Color
	Black    *color.Color
	Light    *color.Color
	Dark     *color.Color
	Flight   *color.Color
	Selected *color.Color
	Label    *color.Color
}

func DefaultTheme() Theme {
	return Theme{
		White:    color.New(color.FgHiWhite, color.Bold),
		Black:    color.New(color.FgRed, color.Bold),
		Light:    color.New(color.BgHiBlack),
		Dark:     color.New(color.BgBlack),
		Flight:   color.New(color.FgCyan),
		Selected: color.New(color.BgYellow, color.FgBlack),
		Label:    color.New(color.Faint),
	}
}

func (t Theme) all() []*color.Color {
	return []*color.Color{t.White, t.Black, t.Light, t.Dark, t.Flight, t.Selected, t.Label}
}

// Printer draws the board as text, rank 8 on top. Pieces in flight show as
// '*' on the square they are headed to.
type Printer struct {
	theme   Theme
	colored bool
}

func New(colored bool) *Printer {
	return NewWithTheme(DefaultTheme(), colored)
}

func NewWithTheme(t Theme, colored bool) *Printer {
	for _, c := range t.all() {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &Printer{theme: t, colored: colored}
}

func (p *Printer) Render(w io.Writer, v View) error {
	board := v.Board()
	selected, hasSelected := v.Selection()

	flying := map[engine.Square]engine.Transform{}
	var flights []string
	for _, tr := range v.Transforms() {
		if tr.Mode != engine.Moving {
			continue
		}
		flying[tr.Square] = tr
		flights = append(flights, fmt.Sprintf("%c->%s", engine.Letter(int8(tr.Kind)*int8(tr.Side)), tr.Square))
	}

	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		sb.WriteString(p.theme.Label.Sprint(r + 1))
		for f := 0; f < 8; f++ {
			sq := engine.Square{File: f, Rank: r}
			sb.WriteString(p.cell(sq, board.At(sq), flying, hasSelected && sq == selected))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(p.theme.Label.Sprint("  a b c d e f g h"))
	sb.WriteByte('\n')

	if hasSelected {
		fmt.Fprintf(&sb, "selected: %s\n", selected)
	}
	if len(flights) > 0 {
		fmt.Fprintf(&sb, "flying: %s\n", strings.Join(flights, " "))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (p *Printer) cell(sq engine.Square, code int8, flying map[engine.Square]engine.Transform, selected bool) string {
	glyph := string(engine.Letter(code))
	fg := p.theme.White
	if code < 0 {
		fg = p.theme.Black
	}
	if _, ok := flying[sq]; ok && code == 0 {
		glyph, fg = "*", p.theme.Flight
	}

	text := " " + glyph
	if !p.colored {
		return text
	}

	bg := p.theme.Light
	if (sq.File+sq.Rank)%2 == 0 {
		bg = p.theme.Dark
	}
	if selected {
		bg = p.theme.Selected
	}
	return bg.Sprint(" ") + bg.Sprint(fg.Sprint(glyph))
}
