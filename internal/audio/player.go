package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/playmatatu/turntable/internal/pool"
)

const sampleRate = beep.SampleRate(44100)

// Player plays event sounds through the speaker. It is a pool.Bridge; an
// uninitialized player silently ignores events.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}}
}

// Init opens the speaker and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Present plays the sound for every sound event of the tick.
func (p *Player) Present(_ pool.Snapshot, events []pool.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	for _, ev := range events {
		s, ok := SoundFor(ev.Kind)
		if !ok {
			continue
		}
		streamer, err := s.Streamer(sampleRate)
		if err != nil {
			log.Printf("[AUDIO] %s: %v", ev.Kind, err)
			continue
		}
		speaker.Lock()
		p.mixer.Add(streamer)
		speaker.Unlock()
	}
}

// Close stops all sounds and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
