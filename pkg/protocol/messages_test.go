package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	data, err := Encode(Move{From: "e2", To: "e4"})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,["e2","e4"]]`, string(data))

	data, err = Encode(NewPing(time.UnixMilli(1700000000123)))
	require.NoError(t, err)
	assert.JSONEq(t, `[0,[1700000000123]]`, string(data))

	_, err = Encode(Move{From: "e2", To: "e9"})
	assert.ErrorIs(t, err, ErrBadArgs)
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    Message
		wantErr error
	}{
		{name: "move", in: `[1,["e7","e5"]]`, want: Move{From: "e7", To: "e5"}},
		{name: "ping", in: `[0,[1700000000123]]`, want: Ping{SentAt: 1700000000123}},
		{name: "not json", in: `hello`, wantErr: ErrMalformed},
		{name: "object", in: `{"type":1}`, wantErr: ErrMalformed},
		{name: "one element", in: `[1]`, wantErr: ErrMalformed},
		{name: "three elements", in: `[1,["e2","e4"],3]`, wantErr: ErrMalformed},
		{name: "string tag", in: `["1",["e2","e4"]]`, wantErr: ErrMalformed},
		{name: "unknown tag", in: `[7,[]]`, wantErr: ErrUnknownType},
		{name: "move with one label", in: `[1,["e2"]]`, wantErr: ErrBadArgs},
		{name: "move off board", in: `[1,["e2","z9"]]`, wantErr: ErrBadArgs},
		{name: "move with numbers", in: `[1,[4,3]]`, wantErr: ErrBadArgs},
		{name: "ping without stamp", in: `[0,[]]`, wantErr: ErrBadArgs},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.in))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPingTime(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.True(t, NewPing(at).Time().Equal(at))
	assert.Equal(t, "ping", TypePing.String())
	assert.Equal(t, "type(9)", Type(9).String())
}

func TestValidLabel(t *testing.T) {
	for _, ok := range []string{"a1", "h8", "e4"} {
		assert.True(t, ValidLabel(ok), ok)
	}
	for _, bad := range []string{"", "a", "a0", "i1", "A1", "e44"} {
		assert.False(t, ValidLabel(bad), bad)
	}
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "kfchess-brave-otter", Channel("brave-otter"))
	assert.Equal(t, "brave-otter", RoomCode("kfchess-brave-otter"))
	assert.Equal(t, "brave-otter", RoomCode("brave-otter"))
}
