// Command tablecli plays a hot-seat game of 8-ball in the terminal. Drag with
// the mouse away from the cue ball to aim and release to shoot.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/playmatatu/turntable/internal/audio"
	"github.com/playmatatu/turntable/internal/physics"
	"github.com/playmatatu/turntable/internal/pool"
	"github.com/playmatatu/turntable/internal/runner"
	"github.com/playmatatu/turntable/internal/term"
)

const tick = 16 * time.Millisecond // ~60 FPS

type game struct {
	screen   tcell.Screen
	runner   *runner.Runner
	renderer *term.Renderer
	dragging bool
	pointer  pool.Vec2
}

func main() {
	policy := flag.String("policy", "first", "pocket policy: first or all")
	mute := flag.Bool("mute", false, "disable sounds")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	table := pool.NewTable()
	session := pool.NewSession(physics.NewWorld(table), table, pool.Options{PocketPolicy: pool.ParsePocketPolicy(*policy)})

	g := &game{
		screen:   screen,
		runner:   runner.New(session, tick),
		renderer: term.NewRenderer(screen, table),
	}
	g.runner.AddBridge(g.renderer)

	if !*mute {
		player := audio.NewPlayer()
		if err := player.Init(); err != nil {
			// Non-fatal, the game runs without sound
			log.Printf("[AUDIO] Initialization failed: %v", err)
		} else {
			defer player.Close()
			g.runner.AddBridge(player)
		}
	}

	g.run()
}

func (g *game) run() {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !g.handle(ev) {
				return
			}
		case <-ticker.C:
			g.runner.Step()
		}
	}
}

// handle reports false when the player quits.
func (g *game) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			return false
		case ev.Rune() == 'r':
			g.dragging = false
			g.renderer.SetAim(nil)
			g.submit(runner.InputReset)
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		g.pointer = g.renderer.Layout().ToTable(x, y)
		pressed := ev.Buttons()&tcell.Button1 != 0

		switch {
		case pressed && !g.dragging:
			g.dragging = true
			g.renderer.SetAim(&g.pointer)
			g.submit(runner.InputBeginAim)
			g.submit(runner.InputUpdateAim)
		case pressed:
			g.submit(runner.InputUpdateAim)
		case g.dragging:
			g.dragging = false
			g.renderer.SetAim(nil)
			g.submit(runner.InputUpdateAim)
			g.submit(runner.InputCommitShot)
		}

	case *tcell.EventResize:
		g.screen.Sync()
		g.renderer.Resize()
		g.renderer.Draw()
	}
	return true
}

// submit queues an input for the local device, which plays both seats.
func (g *game) submit(kind runner.InputKind) {
	if err := g.runner.Submit(runner.Input{Kind: kind, Pointer: g.pointer, Seat: 0}); err != nil {
		log.Printf("[CLI] %s dropped: %v", kind, err)
	}
}
