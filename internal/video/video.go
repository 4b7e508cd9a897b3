package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/kaal/internal/timecode"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video probing operations
type Processor interface {
	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// reads frame start times of the first video stream
	GetTimecodes(ctx context.Context, videoPath string) (*timecode.Table, error)
}

// default implementation using ffprobe through ffmpeg-go
type DefaultProcessor struct {
	timeout time.Duration
}

// timeout bounds each ffprobe run; <= 0 means no limit
func NewProcessor(timeout time.Duration) *DefaultProcessor {
	return &DefaultProcessor{
		timeout: timeout,
	}
}

// JSON output from ffprobe
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
	Packets []struct {
		PtsTime string `json:"pts_time"`
	} `json:"packets"`
}

func (p *DefaultProcessor) probe(
	ctx context.Context,
	videoPath string,
	kwargs ffmpeg.KwArgs,
) (*probeOutput, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := ffmpeg.ProbeWithTimeout(videoPath, p.timeout, kwargs)
		done <- result{raw, err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		// ffprobe keeps running in the background until it exits or hits the timeout
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("ffprobe failed: %w", res.err)
		}
		raw = res.raw
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &out, nil
}

// GetInfo retrieves video file information. Cancelling ctx makes the call
// return early but does not kill ffprobe; the processor timeout is the only
// bound on the ffprobe process itself.
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	out, err := p.probe(ctx, videoPath, ffmpeg.KwArgs{"v": "error"})
	if err != nil {
		return nil, err
	}
	return out.info(videoPath)
}

// GetTimecodes reads packet timestamps of the first video stream. Packets
// arrive in decode order so the result is sorted into presentation order.
// Cancellation behaves as in GetInfo: ffprobe is bounded only by the timeout.
func (p *DefaultProcessor) GetTimecodes(
	ctx context.Context,
	videoPath string,
) (*timecode.Table, error) {
	out, err := p.probe(ctx, videoPath, ffmpeg.KwArgs{
		"v":              "error",
		"select_streams": "v:0",
		"show_entries":   "packet=pts_time",
	})
	if err != nil {
		return nil, err
	}
	return out.timecodes()
}

func (o *probeOutput) info(path string) (*Info, error) {
	info := &Info{Path: path}

	if o.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(o.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	foundVideo := false
	for _, s := range o.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.Codec = s.CodecName
			info.FrameRate = parseRate(s.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseRate(s.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}

	if !foundVideo {
		return nil, fmt.Errorf("no video stream in %s", path)
	}
	return info, nil
}

func (o *probeOutput) timecodes() (*timecode.Table, error) {
	values := make([]int64, 0, len(o.Packets))
	for i, pkt := range o.Packets {
		if pkt.PtsTime == "" || pkt.PtsTime == "N/A" {
			continue
		}
		seconds, err := strconv.ParseFloat(pkt.PtsTime, 64)
		if err != nil {
			return nil, fmt.Errorf("packet %d: invalid pts_time %q: %w", i, pkt.PtsTime, err)
		}
		values = append(values, int64(math.Round(seconds*1000)))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no video packets with timestamps")
	}
	return timecode.NewSortedTable(values), nil
}

// parses ffprobe rationals such as "24000/1001"
func parseRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0
		}
		return v
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
