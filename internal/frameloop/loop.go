package frameloop

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FrameFunc receives the animation clock t, seconds since the loop started,
// and dt, seconds since the previous frame.
type FrameFunc func(t, dt float64)

type Loop struct {
	interval time.Duration
	frame    FrameFunc
	log      *zap.Logger
	now      func() time.Time
}

func New(interval time.Duration, frame FrameFunc, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{interval: interval, frame: frame, log: log, now: time.Now}
}

// Run calls the frame function on every tick until ctx ends. Late ticks are
// not replayed; the next frame just sees a larger dt.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	start := l.now()
	last := start
	frames := 0
	l.log.Info("frame loop started", zap.Duration("interval", l.interval))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("frame loop stopped", zap.Int("frames", frames))
			return nil
		case <-ticker.C:
			now := l.now()
			l.frame(now.Sub(start).Seconds(), now.Sub(last).Seconds())
			last = now
			frames++
		}
	}
}
