package ascii

import (
	"strings"
	"testing"

	"github.com/DoyleJ11/kungfu-chess/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Plain(t *testing.T) {
	g := engine.NewGame()
	var sb strings.Builder
	require.NoError(t, New(false).Render(&sb, g))

	want := strings.Join([]string{
		"8 r n b q k b n r",
		"7 p p p p p p p p",
		"6 . . . . . . . .",
		"5 . . . . . . . .",
		"4 . . . . . . . .",
		"3 . . . . . . . .",
		"2 P P P P P P P P",
		"1 R N B Q K B N R",
		"  a b c d e f g h",
		"",
	}, "\n")
	assert.Equal(t, want, sb.String())
}

func TestRender_FlightAndSelection(t *testing.T) {
	g := engine.NewGame()
	require.True(t, g.Submit(engine.MustSquare("e2"), engine.MustSquare("e4"), 0))
	g.Click(engine.MustSquare("g1"), 0)

	var sb strings.Builder
	require.NoError(t, New(false).Render(&sb, g))
	lines := strings.Split(sb.String(), "\n")

	assert.Equal(t, "4 . . . . * . . .", lines[4])
	assert.Equal(t, "2 P P P P . P P P", lines[6])
	assert.Contains(t, sb.String(), "selected: g1\n")
	assert.Contains(t, sb.String(), "flying: P->e4\n")
}

func TestRender_Colored(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, New(true).Render(&sb, engine.NewGame()))
	assert.Contains(t, sb.String(), "\x1b[")
}
