package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"github.com/playmatatu/turntable/internal/pool"
)

// Note is one tone of a sound.
type Note struct {
	Freq     float64
	Duration time.Duration
}

// Sound is a short synthesized cue played for a table event.
type Sound struct {
	Notes  []Note
	Volume float64 // 0..1
}

var sounds = map[pool.EventKind]Sound{
	pool.EventHitSound: {
		Notes:  []Note{{Freq: 880, Duration: 40 * time.Millisecond}},
		Volume: 0.5,
	},
	pool.EventCueStrike: {
		Notes:  []Note{{Freq: 220, Duration: 60 * time.Millisecond}},
		Volume: 0.7,
	},
	pool.EventPocketSound: {
		Notes: []Note{
			{Freq: 523.25, Duration: 60 * time.Millisecond},
			{Freq: 392, Duration: 90 * time.Millisecond},
		},
		Volume: 0.6,
	},
	pool.EventScratchSound: {
		Notes: []Note{
			{Freq: 330, Duration: 80 * time.Millisecond},
			{Freq: 165, Duration: 160 * time.Millisecond},
		},
		Volume: 0.6,
	},
	pool.EventFoulSound: {
		Notes:  []Note{{Freq: 110, Duration: 200 * time.Millisecond}},
		Volume: 0.6,
	},
	pool.EventWinSound: {
		Notes: []Note{
			{Freq: 523.25, Duration: 120 * time.Millisecond},
			{Freq: 659.25, Duration: 120 * time.Millisecond},
			{Freq: 783.99, Duration: 120 * time.Millisecond},
			{Freq: 1046.5, Duration: 300 * time.Millisecond},
		},
		Volume: 0.7,
	},
}

// SoundFor returns the sound for an event kind. Non-sound events report false.
func SoundFor(kind pool.EventKind) (Sound, bool) {
	s, ok := sounds[kind]
	return s, ok
}

// Samples is the total length of the sound at rate.
func (s Sound) Samples(rate beep.SampleRate) int {
	n := 0
	for _, note := range s.Notes {
		n += rate.N(note.Duration)
	}
	return n
}

// Streamer renders the sound as a sequence of sine tones.
func (s Sound) Streamer(rate beep.SampleRate) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(s.Notes))
	for _, note := range s.Notes {
		tone, err := generators.SineTone(rate, note.Freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(rate.N(note.Duration), tone))
	}
	return volume(beep.Seq(parts...), s.Volume), nil
}

// math.Log2(0) is -Inf, so zero volume is handled as silence.
func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}
