package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/kaal/internal/logging"
	"github.com/mgpai22/kaal/internal/timecode"
)

var ErrNotReady = errors.New("playback not ready: no video loaded")

// media player the controller drives
type Backend interface {
	Seek(ctx context.Context, pts int64, precise bool) error
	SetPaused(ctx context.Context, paused bool) error
}

type Controller struct {
	session *Session
	backend Backend
	logger  *logging.Logger
}

func NewController(session *Session, backend Backend, logger *logging.Logger) *Controller {
	return &Controller{
		session: session,
		backend: backend,
		logger:  logging.OrNop(logger),
	}
}

func (c *Controller) Session() *Session {
	return c.session
}

// ready once a video with at least one frame is loaded
func (c *Controller) IsReady() bool {
	return !c.session.Timecodes().Empty()
}

func (c *Controller) Position() int64 {
	return c.session.Position()
}

func (c *Controller) IsPaused() bool {
	return c.session.IsPaused()
}

// Seek aligns pts to a frame boundary using mode and moves playback there.
// Returns the aligned position.
func (c *Controller) Seek(
	ctx context.Context,
	pts int64,
	precise bool,
	mode timecode.Mode,
) (int64, error) {
	table := c.session.Timecodes()
	if table.Empty() {
		return 0, ErrNotReady
	}

	aligned := table.Align(mode, pts)

	if err := c.backend.Seek(ctx, aligned, precise); err != nil {
		return 0, fmt.Errorf("seek to %dms failed: %w", aligned, err)
	}
	c.session.setPosition(aligned)

	c.logger.Debugw("Seeked",
		"requested", pts,
		"aligned", aligned,
		"mode", mode.String(),
		"precise", precise,
	)
	return aligned, nil
}

func (c *Controller) SetPaused(ctx context.Context, paused bool) error {
	if !c.IsReady() {
		return ErrNotReady
	}
	if err := c.backend.SetPaused(ctx, paused); err != nil {
		return fmt.Errorf("failed to set paused=%v: %w", paused, err)
	}
	c.session.setPaused(paused)
	return nil
}

func (c *Controller) TogglePause(ctx context.Context) error {
	return c.SetPaused(ctx, !c.session.IsPaused())
}
