package hub

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/DoyleJ11/kungfu-chess/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Create_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, nil)
	reply := make(chan *room.Room, 1)

	h.Inbox() <- CreateRoom{Code: "ZED123", Reply: reply}
	rm1 := <-reply

	h.Inbox() <- GetRoom{Code: "ZED123", Reply: reply}
	rm2 := <-reply

	if rm1 == nil || rm2 == nil || rm1 != rm2 {
		t.Fatalf("expected same room pointer")
	}
	assert.Equal(t, "ZED123", rm1.Code())
}

func TestHub_CreateRefusesTakenCode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, nil)

	require.NotNil(t, h.Create(ctx, "calm-fox"))
	assert.Nil(t, h.Create(ctx, "calm-fox"))
}

func TestHub_EnsureCreatesOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, nil)

	assert.Nil(t, h.Get(ctx, "late-owl"))
	rm := h.Ensure(ctx, "late-owl")
	require.NotNil(t, rm)
	assert.Same(t, rm, h.Ensure(ctx, "late-owl"))
	assert.Same(t, rm, h.Get(ctx, "late-owl"))

	h.Ensure(ctx, "early-bird")
	reply := make(chan []string, 1)
	h.Inbox() <- ListRooms{Reply: reply}
	codes := <-reply
	sort.Strings(codes)
	assert.Equal(t, []string{"early-bird", "late-owl"}, codes)
}

func TestHub_RemoveStopsRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, nil)

	rm := h.Ensure(ctx, "gone")
	require.NotNil(t, rm)
	h.Inbox() <- RemoveRoom{Code: "gone"}

	select {
	case <-rm.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("removed room still running")
	}
	assert.Nil(t, h.Get(ctx, "gone"))
}

func TestHub_ShutdownStopsRooms(t *testing.T) {
	h := NewHub(context.Background(), nil)
	rm := h.Ensure(context.Background(), "a")
	require.NotNil(t, rm)

	h.Inbox() <- ShutdownHub{}
	for _, done := range []<-chan struct{}{h.Done(), rm.Done()} {
		select {
		case <-done:
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("still running after shutdown")
		}
	}
	assert.Nil(t, h.Ensure(context.Background(), "b"))
}

func TestHub_ForgetsIdleRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, nil, WithRoomIdle(30*time.Millisecond))

	rm := h.Ensure(ctx, "nobody-home")
	require.NotNil(t, rm)
	select {
	case <-rm.Done():
	case <-time.After(time.Second):
		t.Fatalf("empty room still running")
	}
	require.Eventually(t, func() bool {
		return h.Get(ctx, "nobody-home") == nil
	}, time.Second, 10*time.Millisecond)

	fresh := h.Ensure(ctx, "nobody-home")
	require.NotNil(t, fresh)
	assert.NotSame(t, rm, fresh)
}

func TestHub_JoinSubscribes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, nil, WithRoomIdle(30*time.Millisecond))

	out := make(chan room.Frame, 1)
	rm := h.Join(ctx, "kept", room.Subscribe{ID: "white", Outbox: out})
	require.NotNil(t, rm)

	// A subscribed room outlives the idle window.
	time.Sleep(100 * time.Millisecond)
	assert.Same(t, rm, h.Get(ctx, "kept"))

	rm.Inbox() <- room.Publish{Data: []byte(`[0,[1]]`)}
	select {
	case f := <-out:
		assert.Equal(t, 1, f.Seq)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("joined subscriber got nothing")
	}
}

func TestHub_RemoveAfterShutdown(t *testing.T) {
	h := NewHub(context.Background(), nil)
	h.Inbox() <- ShutdownHub{}
	<-h.Done()

	done := make(chan bool, 1)
	go func() { done <- h.Remove(context.Background(), "any") }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("Remove blocked on a stopped hub")
	}
}
