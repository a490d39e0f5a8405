package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DoyleJ11/kungfu-chess/internal/hub"
	"github.com/DoyleJ11/kungfu-chess/internal/room"
	"github.com/DoyleJ11/kungfu-chess/pkg/protocol"
	petname "github.com/dustinkirkland/golang-petname"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	codeAttempts = 8
	sseKeepAlive = 15 * time.Second
	sseOutbox    = 32
	maxBroadcast = 4096
)

// GenerateCode returns a two-word room code such as "brave-otter".
func GenerateCode() string {
	return petname.Generate(2, "-")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type roomView struct {
	Code        string `json:"code"`
	Channel     string `json:"channel"`
	Seq         int    `json:"seq"`
	Subscribers int    `json:"subscribers"`
}

func CreateRoom(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < codeAttempts; i++ {
			code := GenerateCode()
			if i == codeAttempts-1 {
				code = fmt.Sprintf("%s-%s", code, uuid.NewString()[:4])
			}
			rm := h.Create(r.Context(), code)
			if rm == nil {
				log.Debug("collision on code, regenerating", zap.String("code", code))
				continue
			}
			writeJSON(w, http.StatusCreated, roomView{Code: code, Channel: protocol.Channel(code)})
			return
		}
		http.Error(w, "failed to create room", http.StatusInternalServerError)
	}
}

// view asks the room for its state; nil when the room is gone.
func view(r *http.Request, rm *room.Room) *roomView {
	reply := make(chan room.View, 1)
	if !rm.Send(r.Context(), room.GetState{Reply: reply}) {
		return nil
	}
	select {
	case v := <-reply:
		return &roomView{Code: v.Code, Channel: protocol.Channel(v.Code), Seq: v.Seq, Subscribers: v.NumSubscribers}
	case <-rm.Done():
		return nil
	case <-r.Context().Done():
		return nil
	}
}

func GetRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm := h.Get(r.Context(), chi.URLParam(r, "code"))
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		v := view(r, rm)
		if v == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func DeleteRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if h.Get(r.Context(), code) == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		if !h.Remove(r.Context(), code) {
			http.Error(w, "relay shutting down", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Events streams a room as server-sent events, one data line per frame.
// The subscriber gets everything published, its own broadcasts included.
func Events(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		code := protocol.RoomCode(chi.URLParam(r, "channel"))
		id := uuid.NewString()
		out := make(chan room.Frame, sseOutbox)
		rm := h.Join(r.Context(), code, room.Subscribe{ID: id, Outbox: out})
		if rm == nil {
			http.Error(w, "relay shutting down", http.StatusServiceUnavailable)
			return
		}
		defer rm.Send(context.Background(), room.Unsubscribe{ID: id})

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		keepAlive := time.NewTicker(sseKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-rm.Done():
				return
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case f, ok := <-out:
				if !ok {
					log.Debug("event stream closed by room", zap.String("room", code), zap.String("subscriber", id))
					return
				}
				if _, err := fmt.Fprintf(w, "id: %d\ndata: %s\n\n", f.Seq, f.Data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

type broadcastRequest struct {
	Channel string `json:"channel"`
	Msg     string `json:"msg"` // the encoded [type, args] frame
}

// Broadcast publishes one frame to a channel on behalf of a client without a
// websocket.
func Broadcast(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req broadcastRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBroadcast)).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		code := protocol.RoomCode(req.Channel)
		if code == "" {
			http.Error(w, "missing channel", http.StatusBadRequest)
			return
		}
		if _, err := protocol.Decode([]byte(req.Msg)); err != nil {
			log.Warn("dropping malformed broadcast", zap.String("room", code), zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rm := h.Ensure(r.Context(), code)
		if rm == nil || !rm.Send(r.Context(), room.Publish{Data: []byte(req.Msg)}) {
			http.Error(w, "relay shutting down", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
