package core

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/vansante/go-ffprobe.v2"
)

// probeFunc defines the function signature used to execute ffprobe.
type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// DurationProbe reports the playback length of a video file.
type DurationProbe interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// FFProbe reads container durations with the ffprobe binary.
type FFProbe struct {
	probe   probeFunc
	timeout time.Duration
}

// NewFFProbe returns a probe that gives up on a single file after 30 seconds.
func NewFFProbe() *FFProbe {
	return &FFProbe{
		probe:   ffprobe.ProbeURL,
		timeout: 30 * time.Second,
	}
}

// Duration returns the container duration of path.
func (p *FFProbe) Duration(ctx context.Context, path string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, err := p.probe(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	if data == nil || data.Format == nil {
		return 0, fmt.Errorf("ffprobe returned no format for %s", path)
	}
	if data.Format.DurationSeconds <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}
	return time.Duration(data.Format.DurationSeconds * float64(time.Second)), nil
}
