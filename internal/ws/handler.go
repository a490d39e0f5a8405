package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/kungfu-chess/internal/hub"
	"github.com/DoyleJ11/kungfu-chess/internal/room"
	"github.com/DoyleJ11/kungfu-chess/pkg/protocol"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	readLimit        = 4096
	writeTimeout     = 3 * time.Second
	outboxSize       = 32
	defaultKeepAlive = 20 * time.Second
)

type options struct {
	keepAlive time.Duration
}

type Option func(*options)

// WithKeepAlive pings the peer every d and drops it when no pong comes back
// within d. Zero turns pinging off. Pongs are answered by the peer's reader,
// so a peer that only listens stays connected.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.keepAlive = d }
}

// Handler joins the websocket to the room named by ?room=, creating it if
// needed. Every valid frame read is published to the other subscribers;
// frames that do not decode are logged and dropped. A peer may stay silent
// for as long as it likes.
func Handler(h *hub.Hub, log *zap.Logger, opts ...Option) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	o := options{keepAlive: defaultKeepAlive}
	for _, opt := range opts {
		opt(&o)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := protocol.RoomCode(r.URL.Query().Get("room"))
		if code == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}

		id := uuid.NewString()
		log := log.With(zap.String("room", code), zap.String("subscriber", id))

		out := make(chan room.Frame, outboxSize)
		rm := h.Join(r.Context(), code, room.Subscribe{ID: id, Outbox: out})
		if rm == nil {
			http.Error(w, "relay shutting down", http.StatusServiceUnavailable)
			return
		}
		defer rm.Send(context.Background(), room.Unsubscribe{ID: id})

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case <-rm.Done():
					conn.Close(websocket.StatusGoingAway, "room closed")
					return
				case f, ok := <-out:
					if !ok {
						// Dropped as slow, or the room went away.
						conn.Close(websocket.StatusGoingAway, "unsubscribed")
						return
					}
					ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
					err := conn.Write(ctx, websocket.MessageText, f.Data)
					cancel()
					if err != nil {
						log.Debug("write failed", zap.Int("seq", f.Seq), zap.Error(err))
						return
					}
				}
			}
		}()

		if o.keepAlive > 0 {
			go keepAlive(writeCtx, conn, o.keepAlive, log)
		}

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if !errors.Is(err, context.Canceled) {
						log.Debug("read ended", zap.Error(err))
					}
				}
				return
			}

			if _, err := protocol.Decode(data); err != nil {
				log.Warn("dropping malformed frame", zap.Error(err), zap.Int("bytes", len(data)))
				continue
			}

			if !rm.Send(r.Context(), room.Publish{From: id, Data: data}) {
				return
			}
		}
	}
}

func keepAlive(ctx context.Context, conn *websocket.Conn, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, every)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					log.Info("peer missed ping, dropping", zap.Error(err))
					conn.CloseNow()
				}
				return
			}
		}
	}
}
