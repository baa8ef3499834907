package audio

import (
	"io"
	"log/slog"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Player plays a fixed sound each time the sound timer expires.
type Player struct {
	player *ebaudio.Player
	logger *slog.Logger
}

// NewPlayer prepares s for playback on ctx. The sample is converted to the
// context's rate and cut to BeepDuration.
func NewPlayer(ctx *ebaudio.Context, s Sample, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pcm := s.Resample(float64(ctx.SampleRate())).Truncate(BeepDuration).PCM16()
	return &Player{
		player: ctx.NewPlayerFromBytes(pcm),
		logger: logger,
	}
}

// Beep restarts the sound from the beginning. Playback happens on the
// audio thread so Beep returns immediately.
func (p *Player) Beep() {
	if err := p.player.Rewind(); err != nil {
		p.logger.Warn("rewinding beep", "err", err)
		return
	}
	p.player.Play()
}

func (p *Player) Close() error {
	return p.player.Close()
}
