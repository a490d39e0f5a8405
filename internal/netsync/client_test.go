package netsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/kungfu-chess/internal/engine"
	"github.com/DoyleJ11/kungfu-chess/internal/httpapi"
	"github.com/DoyleJ11/kungfu-chess/internal/hub"
	"github.com/DoyleJ11/kungfu-chess/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func subscribers(ctx context.Context, h *hub.Hub, code string) int {
	rm := h.Get(ctx, code)
	if rm == nil {
		return 0
	}
	reply := make(chan room.View, 1)
	if !rm.Send(ctx, room.GetState{Reply: reply}) {
		return 0
	}
	select {
	case v := <-reply:
		return v.NumSubscribers
	case <-time.After(100 * time.Millisecond):
		return 0
	}
}

func TestClient_RelaysBetweenPeers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub(ctx, nil)
	srv := httptest.NewServer(httpapi.SetupRoutes(h, nil))
	defer srv.Close()
	relayURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	code, err := CreateRoom(ctx, relayURL)
	require.NoError(t, err)

	whiteLog, whiteLogs := observed(zap.NewAtomicLevelAt(zap.DebugLevel))
	white := NewSession(engine.NewGame(engine.WithSide(engine.White)), whiteLog)
	black := NewSession(engine.NewGame(engine.WithSide(engine.Black)), nil)

	wc, err := NewClient(relayURL, code, white.Deliver)
	require.NoError(t, err)
	bc, err := NewClient(relayURL, code, black.Deliver, WithPing(20*time.Millisecond))
	require.NoError(t, err)
	white.Bind(wc)
	black.Bind(bc)

	runCtx, stop := context.WithCancel(ctx)
	var g errgroup.Group
	g.Go(func() error { return wc.Run(runCtx) })
	g.Go(func() error { return bc.Run(runCtx) })

	require.Eventually(t, func() bool {
		return subscribers(ctx, h, code) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, StateConnected, wc.State())

	require.True(t, white.Move(e2, e4, 0))
	require.Eventually(t, func() bool {
		black.Frame(0, 0)
		return black.Game().Board().At(e2) == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return whiteLogs.FilterMessage("ping").Len() > 0
	}, 2*time.Second, 10*time.Millisecond)

	stop()
	require.NoError(t, g.Wait())
	assert.Equal(t, StateDisconnected, wc.State())
	assert.NoError(t, wc.LastError())
}

func TestClient_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := NewClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "room", func([]byte) {})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, c.Run(ctx))
	assert.Equal(t, StateError, c.State())
	assert.Error(t, c.LastError())
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("ws://localhost:8080/ws", "brave-otter", func([]byte) {})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws?room=brave-otter", c.URL())

	_, err = NewClient("http://localhost:8080/ws", "room", nil)
	assert.Error(t, err)
	_, err = NewClient("ws://localhost:8080/ws", "", nil)
	assert.Error(t, err)
}

func TestClient_OutboxFull(t *testing.T) {
	c, err := NewClient("ws://localhost:8080/ws", "room", nil)
	require.NoError(t, err)
	for i := 0; i < outboxSize; i++ {
		require.NoError(t, c.Send(protocolMove("e2", "e4")))
	}
	assert.ErrorIs(t, c.Send(protocolMove("e2", "e4")), ErrOutboxFull)
}

func TestCreateRoom_RelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := CreateRoom(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	assert.Error(t, err)
}

func TestClient_RelayCloseEndsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub(ctx, nil)
	srv := httptest.NewServer(httpapi.SetupRoutes(h, nil))
	defer srv.Close()

	c, err := NewClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "closing", func([]byte) {})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return subscribers(ctx, h, "closing") == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The relay drops the room while the caller still holds ctx open.
	h.Inbox() <- hub.RemoveRoom{Code: "closing"}

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrRelayClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept going after the relay closed the connection")
	}
	assert.Equal(t, StateError, c.State())
	assert.ErrorIs(t, c.LastError(), ErrRelayClosed)
}
