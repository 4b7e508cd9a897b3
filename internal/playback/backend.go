package playback

import (
	"context"
	"sync"

	"github.com/mgpai22/kaal/internal/logging"
)

// LogBackend stands in for a real player in headless runs: it records and
// logs every request.
type LogBackend struct {
	logger *logging.Logger

	mu    sync.Mutex
	seeks []int64
}

func NewLogBackend(logger *logging.Logger) *LogBackend {
	return &LogBackend{logger: logging.OrNop(logger)}
}

func (b *LogBackend) Seek(ctx context.Context, pts int64, precise bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	b.seeks = append(b.seeks, pts)
	b.mu.Unlock()

	b.logger.Infow("Player seek", "pts", pts, "precise", precise)
	return nil
}

func (b *LogBackend) SetPaused(ctx context.Context, paused bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.logger.Infow("Player pause", "paused", paused)
	return nil
}

// positions passed to Seek so far
func (b *LogBackend) Seeks() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int64, len(b.seeks))
	copy(out, b.seeks)
	return out
}
