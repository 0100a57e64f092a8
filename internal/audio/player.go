package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/oshokin/chessclock/internal/logger"
	"github.com/oshokin/chessclock/internal/session"
)

const (
	// sampleRate is the output rate of the speaker.
	sampleRate = beep.SampleRate(44100)

	clickFrequency = 880
	clickDuration  = 40 * time.Millisecond
	// clickVolume is relative to full scale, in powers of two.
	clickVolume = -1

	alarmFrequency = 440
	alarmBeep      = 250 * time.Millisecond
	alarmGap       = 150 * time.Millisecond
	alarmBeeps     = 3
)

// Player turns session signals into sounds.
type Player struct {
	// play hands a finished streamer to the output device.
	play func(beep.Streamer)
	// rate is the sample rate streamers are generated for.
	rate beep.SampleRate
	// closeOnce guards the speaker shutdown.
	closeOnce sync.Once
	// closeFn releases the output device, if one was opened.
	closeFn func()
}

var _ session.Listener = (*Player)(nil)

// New opens the default audio device. When no device is available the
// returned Player is silent and the error is only logged: a chess clock
// without sound is still a chess clock.
func New(ctx context.Context) *Player {
	ctx = logger.WithName(ctx, "audio")

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		logger.WarnKV(ctx, "Audio is unavailable, continuing without sound", "error", err)

		return Silent()
	}

	logger.DebugKV(ctx, "Audio device opened", "sample_rate", int(sampleRate))

	return &Player{
		play:    func(s beep.Streamer) { speaker.Play(s) },
		rate:    sampleRate,
		closeFn: speaker.Close,
	}
}

// Silent returns a Player that never makes a sound.
func Silent() *Player {
	return NewWithOutput(sampleRate, nil)
}

// NewWithOutput returns a Player that passes every sound to play.
func NewWithOutput(rate beep.SampleRate, play func(beep.Streamer)) *Player {
	if play == nil {
		play = func(beep.Streamer) {}
	}

	return &Player{
		play: play,
		rate: rate,
	}
}

// OnUpdate plays the sounds requested by u.
func (p *Player) OnUpdate(u session.Update) {
	for _, sig := range u.Signals {
		switch sig {
		case session.SignalClick:
			p.Click()
		case session.SignalAlarm:
			p.Alarm()
		}
	}
}

// Click plays the short turn-switch sound.
func (p *Player) Click() {
	s, err := ClickStreamer(p.rate)
	if err != nil {
		return
	}

	p.play(s)
}

// Alarm plays the time-is-up sound.
func (p *Player) Alarm() {
	s, err := AlarmStreamer(p.rate)
	if err != nil {
		return
	}

	p.play(s)
}

// Close releases the audio device.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		if p.closeFn != nil {
			p.closeFn()
		}
	})
}

// ClickStreamer returns a short, quiet high tone.
func ClickStreamer(rate beep.SampleRate) (beep.Streamer, error) {
	tone, err := generators.SineTone(rate, clickFrequency)
	if err != nil {
		return nil, fmt.Errorf("click tone: %w", err)
	}

	return &effects.Volume{
		Streamer: beep.Take(rate.N(clickDuration), tone),
		Base:     2,
		Volume:   clickVolume,
	}, nil
}

// AlarmStreamer returns three beeps separated by short pauses.
func AlarmStreamer(rate beep.SampleRate) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, alarmBeeps*2)

	for i := range alarmBeeps {
		tone, err := generators.SineTone(rate, alarmFrequency)
		if err != nil {
			return nil, fmt.Errorf("alarm tone: %w", err)
		}

		parts = append(parts, beep.Take(rate.N(alarmBeep), tone))
		if i < alarmBeeps-1 {
			parts = append(parts, beep.Silence(rate.N(alarmGap)))
		}
	}

	return beep.Seq(parts...), nil
}
