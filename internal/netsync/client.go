package netsync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/DoyleJ11/kungfu-chess/pkg/protocol"
	"github.com/coder/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrOutboxFull = errors.New("outbox full")

// ErrRelayClosed is returned by Run when the relay ends the connection while
// the caller still wants it, for example when the room is removed.
var ErrRelayClosed = errors.New("relay closed the connection")

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	readLimit    = 4096
	outboxSize   = 64
	writeTimeout = 3 * time.Second
)

// Client is the websocket side of a peer. Frames read from the relay go to
// deliver on the reader goroutine; Send queues frames for the writer.
// All shared fields are protected by mu.
type Client struct {
	mu        sync.RWMutex
	state     ClientState
	lastError error

	url       string
	deliver   func([]byte)
	out       chan []byte
	pingEvery time.Duration
	log       *zap.Logger
}

type ClientOption func(*Client)

// WithPing sends a ping every d while connected. Zero disables it.
func WithPing(d time.Duration) ClientOption { return func(c *Client) { c.pingEvery = d } }

func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient prepares a connection to room on the relay websocket endpoint.
func NewClient(relayURL, room string, deliver func([]byte), opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("relay url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("relay url: want ws or wss scheme, got %q", u.Scheme)
	}
	if room == "" {
		return nil, errors.New("relay url: empty room")
	}
	q := u.Query()
	q.Set("room", room)
	u.RawQuery = q.Encode()

	c := &Client{
		url:     u.String(),
		deliver: deliver,
		out:     make(chan []byte, outboxSize),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) URL() string { return c.url }

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) setState(s ClientState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// Send encodes m and queues it without blocking. Frames queued before Run
// connects go out once it does.
func (c *Client) Send(m protocol.Message) error {
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Run connects and pumps frames until ctx ends or the connection fails.
// A cancelled ctx is a clean exit and returns nil. A close from the relay
// side returns ErrRelayClosed.
func (c *Client) Run(ctx context.Context) error {
	c.setState(StateConnecting)
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		err = fmt.Errorf("dial relay: %w", err)
		c.setError(err)
		return err
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	c.setState(StateConnected)
	c.log.Info("connected to relay", zap.String("url", c.url))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			_, data, err := conn.Read(gctx)
			if err != nil {
				return err
			}
			c.deliver(data)
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case data := <-c.out:
				wctx, cancel := context.WithTimeout(gctx, writeTimeout)
				err := conn.Write(wctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					return err
				}
			}
		}
	})
	if c.pingEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(c.pingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case now := <-ticker.C:
					if err := c.Send(protocol.NewPing(now)); err != nil {
						c.log.Debug("ping skipped", zap.Error(err))
					}
				}
			}
		})
	}

	err = g.Wait()
	conn.Close(websocket.StatusNormalClosure, "bye")

	if ctx.Err() != nil {
		c.setState(StateDisconnected)
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		c.setError(ErrRelayClosed)
		c.log.Info("relay closed the connection")
		return ErrRelayClosed
	}
	c.setError(err)
	return fmt.Errorf("relay connection: %w", err)
}
