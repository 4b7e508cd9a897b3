package video

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mgpai22/kaal/internal/logging"
	"github.com/mgpai22/kaal/internal/timecode"
)

// Source owns the timecode table of the currently loaded video. Loading
// swaps the whole table; readers always get an immutable snapshot.
type Source struct {
	processor Processor
	logger    *logging.Logger

	table atomic.Pointer[timecode.Table]
	info  atomic.Pointer[Info]
}

func NewSource(processor Processor, logger *logging.Logger) *Source {
	return &Source{
		processor: processor,
		logger:    logging.OrNop(logger),
	}
}

// current timecode snapshot; nil until something is loaded
func (s *Source) Timecodes() *timecode.Table {
	return s.table.Load()
}

func (s *Source) IsLoaded() bool {
	return s.table.Load() != nil
}

// info of the last probed video, nil when loaded from a timecode file only
func (s *Source) Info() *Info {
	return s.info.Load()
}

// probes the video and replaces the current timecode table
func (s *Source) Load(ctx context.Context, videoPath string) error {
	if s.processor == nil {
		return fmt.Errorf("no video processor configured")
	}

	info, err := s.processor.GetInfo(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("failed to probe video: %w", err)
	}

	table, err := s.processor.GetTimecodes(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("failed to read timecodes: %w", err)
	}

	s.info.Store(info)
	s.table.Store(table)

	s.logger.Infow("Video loaded",
		"path", videoPath,
		"frames", table.Len(),
		"duration", info.Duration.String(),
		"fps", info.FrameRate,
	)
	return nil
}

// replaces the current table from a v2 timecode file
func (s *Source) LoadTimecodeFile(path string) error {
	table, err := timecode.LoadFile(path)
	if err != nil {
		return err
	}
	s.table.Store(table)

	s.logger.Infow("Timecodes loaded",
		"path", path,
		"frames", table.Len(),
	)
	return nil
}

// installs a table directly
func (s *Source) SetTimecodes(table *timecode.Table) {
	s.table.Store(table)
}

// Watch reloads the timecode file whenever it is written or replaced, until
// ctx is cancelled. The parent directory is watched so editors that save via
// rename are picked up too. Reload failures are logged and the previous table
// stays in place.
func (s *Source) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch timecode file: %w", err)
	}

	s.logger.Debugw("Watching timecode file", "path", absPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// let atomic writes settle
			time.Sleep(100 * time.Millisecond)

			if err := s.LoadTimecodeFile(absPath); err != nil {
				s.logger.Warnw("Failed to reload timecodes",
					"path", absPath,
					"error", err,
				)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnw("File watcher error", "error", err)
		}
	}
}
