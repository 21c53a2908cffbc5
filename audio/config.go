package audio

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lixenwraith/binaural/sim"
)

// Config holds every tunable of the pipeline. Zero values are not usable;
// start from DefaultConfig or LoadConfig.
type Config struct {
	// SampleRate of the output stream and of every source feed, in Hz
	SampleRate int `env:"SAMPLE_RATE" envDefault:"48000"`

	// Channels of the output stream; only 2 (stereo) is supported
	Channels int `env:"CHANNELS" envDefault:"2"`

	// BlockSize is the number of frames rendered per tick
	BlockSize int `env:"BLOCK_SIZE" envDefault:"256"`

	// RingBlocks is the output ring depth; also the maximum render-ahead
	RingBlocks int `env:"RING_BLOCKS" envDefault:"8"`

	// SimInterval paces the dedicated simulation worker. Ignored when
	// SimEveryNBlocks is set.
	SimInterval time.Duration `env:"SIM_INTERVAL" envDefault:"10ms"`

	// SimEveryNBlocks steps the simulation inline on the render thread
	// every N blocks instead of running a worker. 0 selects the worker.
	SimEveryNBlocks int `env:"SIM_EVERY_N_BLOCKS" envDefault:"0"`

	// StalenessBound is how many blocks a held descriptor stays usable
	// when the simulation lags before the source starts fading
	StalenessBound int `env:"STALENESS_BOUND" envDefault:"32"`

	// FadeBlocks is the fade-out length, in blocks, for removal,
	// staleness and feed exhaustion
	FadeBlocks int `env:"FADE_BLOCKS" envDefault:"16"`

	// MinDistance clamps the attenuation curve (reference distance for
	// unity gain)
	MinDistance float64 `env:"MIN_DISTANCE" envDefault:"1"`

	// Attenuation selects the rolloff curve: inverse-linear or
	// inverse-square
	Attenuation string `env:"ATTENUATION" envDefault:"inverse-square"`

	// HRTF enables the binaural FIR path; off means equal-power panning
	HRTF bool `env:"HRTF" envDefault:"true"`

	// HRTFTaps is the head-shadow FIR length per ear
	HRTFTaps int `env:"HRTF_TAPS" envDefault:"32"`

	// HRTFAzimuthBins is the directional resolution of the HRTF bank
	HRTFAzimuthBins int `env:"HRTF_AZIMUTH_BINS" envDefault:"24"`

	// MaxSources bounds concurrent live sources
	MaxSources int `env:"MAX_SOURCES" envDefault:"64"`

	// QuarantineFrames delays slot reuse after the renderer confirms a
	// removal, in game frames
	QuarantineFrames int `env:"QUARANTINE_FRAMES" envDefault:"2"`
}

// DefaultConfig returns the documented defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	// Defaults live in the env tags; parsing an empty environment applies them
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix, Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("audio: default config: %v", err))
	}
	return cfg
}

// LoadConfig builds a Config from BINAURAL_* environment variables on top
// of the defaults
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const envPrefix = "BINAURAL_"

// Validate rejects configurations the pipeline cannot honor
func (c *Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 384000:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.Channels != 2:
		return fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, c.Channels)
	case c.BlockSize < 16 || c.BlockSize > 8192:
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	case c.RingBlocks < 2:
		return fmt.Errorf("%w: ring depth %d", ErrInvalidConfig, c.RingBlocks)
	case c.SimEveryNBlocks < 0:
		return fmt.Errorf("%w: sim every %d blocks", ErrInvalidConfig, c.SimEveryNBlocks)
	case c.SimEveryNBlocks == 0 && c.SimInterval <= 0:
		return fmt.Errorf("%w: sim interval %v", ErrInvalidConfig, c.SimInterval)
	case c.StalenessBound < 1:
		return fmt.Errorf("%w: staleness bound %d", ErrInvalidConfig, c.StalenessBound)
	case c.FadeBlocks < 1:
		return fmt.Errorf("%w: fade blocks %d", ErrInvalidConfig, c.FadeBlocks)
	case c.MinDistance <= 0:
		return fmt.Errorf("%w: min distance %v", ErrInvalidConfig, c.MinDistance)
	case c.MaxSources < 1:
		return fmt.Errorf("%w: max sources %d", ErrInvalidConfig, c.MaxSources)
	case c.QuarantineFrames < 0:
		return fmt.Errorf("%w: quarantine frames %d", ErrInvalidConfig, c.QuarantineFrames)
	}

	if _, err := sim.ParseCurve(c.Attenuation); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.HRTF {
		if c.HRTFTaps < 4 || c.HRTFTaps > 512 {
			return fmt.Errorf("%w: hrtf taps %d", ErrInvalidConfig, c.HRTFTaps)
		}
		if c.HRTFAzimuthBins < 4 {
			return fmt.Errorf("%w: hrtf azimuth bins %d", ErrInvalidConfig, c.HRTFAzimuthBins)
		}
	}
	return nil
}

// curve returns the parsed attenuation curve; Validate must have passed
func (c *Config) curve() sim.Curve {
	curve, err := sim.ParseCurve(c.Attenuation)
	if err != nil {
		return sim.CurveInverseSquare
	}
	return curve
}

// BlockDuration is the wall-clock length of one block
func (c *Config) BlockDuration() time.Duration {
	return time.Duration(c.BlockSize) * time.Second / time.Duration(c.SampleRate)
}
