// Command binaural-demo plays a tone orbiting the listener's head through
// the default audio device. Ctrl-C stops it.
package main

import (
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"

	"github.com/lixenwraith/binaural/audio"
	"github.com/lixenwraith/binaural/feed"
	"github.com/lixenwraith/binaural/scene"
	"github.com/lixenwraith/binaural/vmath"
)

const (
	orbitRadius   = 3.0
	orbitPeriod   = 8 * time.Second
	toneFrequency = 330.0
	frameInterval = 16 * time.Millisecond
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := audio.LoadConfig()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	provider := audio.FeedProviderFunc(func(key scene.EmitterKey) (feed.Feed, error) {
		return feed.NewSineFeed(cfg.SampleRate, toneFrequency, 0.5), nil
	})

	engine, err := audio.NewEngine(cfg, provider, nil)
	if err != nil {
		logger.Error("engine", "error", err)
		os.Exit(1)
	}
	engine.SetLogger(logger)

	if err := engine.Start(); err != nil {
		logger.Error("start", "error", err)
		os.Exit(1)
	}
	defer engine.Stop()

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		logger.Error("audio device", "error", err)
		os.Exit(1)
	}
	<-ready

	player := otoCtx.NewPlayer(engine)
	player.Play()
	defer player.Close()

	key := scene.EmitterKey(uuid.NewString())
	listener := vmath.IdentityTransform()

	logger.Info("orbiting tone", "key", key, "radius", orbitRadius, "period", orbitPeriod)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-sig:
			logger.Info("shutting down", "metrics", engine.Metrics())
			return
		case <-ticker.C:
			angle := 2 * math.Pi * float64(time.Since(start)) / float64(orbitPeriod)
			em := scene.Emitter{
				Key: key,
				Transform: vmath.Transform{
					Position: vmath.Vec3{
						X: orbitRadius * math.Sin(angle),
						Z: orbitRadius * math.Cos(angle),
					},
					Rotation: vmath.QIdentity(),
				},
			}
			if err := engine.SyncScene([]scene.Emitter{em}, listener); err != nil {
				logger.Warn("sync", "error", err)
			}
		}
	}
}
