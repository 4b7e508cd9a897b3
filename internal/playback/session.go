package playback

import (
	"sync"
	"sync/atomic"

	"github.com/mgpai22/kaal/internal/timecode"
)

// anything that can hand out the current timecode snapshot, e.g. *video.Source
type TimecodeSource interface {
	Timecodes() *timecode.Table
}

// Span is a selected [Start, End] range in milliseconds
type Span struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Session is the state shared by the playback controller and the commands
// acting on it: where the timecodes come from, the playback position and the
// current subtitle selection. One Session is created per opened video and
// passed explicitly to every call site.
type Session struct {
	source TimecodeSource

	position atomic.Int64
	paused   atomic.Bool

	mu        sync.RWMutex
	selection *Span
	selected  int
}

func NewSession(source TimecodeSource) *Session {
	s := &Session{source: source, selected: -1}
	s.paused.Store(true)
	return s
}

// current timecode snapshot, nil when nothing is loaded
func (s *Session) Timecodes() *timecode.Table {
	if s.source == nil {
		return nil
	}
	return s.source.Timecodes()
}

func (s *Session) Position() int64 {
	return s.position.Load()
}

func (s *Session) IsPaused() bool {
	return s.paused.Load()
}

// selected subtitle span, ok is false when nothing is selected
func (s *Session) Selection() (Span, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection == nil {
		return Span{}, false
	}
	return *s.selection, true
}

// index of the selected subtitle, -1 when none
func (s *Session) SelectedIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Session) Select(index int, span Span) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = index
	s.selection = &span
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = -1
	s.selection = nil
}

func (s *Session) setPosition(pts int64) {
	s.position.Store(pts)
}

func (s *Session) setPaused(paused bool) {
	s.paused.Store(paused)
}
