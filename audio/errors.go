package audio

import (
	"errors"
)

// Sentinel errors. Configuration and lifecycle violations surface
// synchronously on the game thread; the render path never returns errors,
// it degrades and counts.
var (
	ErrInvalidConfig       = errors.New("audio: invalid configuration")
	ErrEngineRunning       = errors.New("audio: engine already running")
	ErrEngineNotRunning    = errors.New("audio: engine not running")
	ErrNilFeed             = errors.New("audio: feed provider returned nil feed")
	ErrSampleRateMismatch  = errors.New("audio: source sample rate does not match engine")
	ErrChannelMismatch     = errors.New("audio: source must be mono")
	ErrCommandBacklog      = errors.New("audio: renderer command queue full")
	ErrNoFeedProvider      = errors.New("audio: no feed provider configured")
	ErrUnsupportedChannels = errors.New("audio: only stereo output is supported")
)
