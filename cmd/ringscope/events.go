package main

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/tphakala/go-audio-ringscope/internal/analysis"
)

// pointerTarget receives pointer gestures in CSS pixels.
type pointerTarget interface {
	PointerDown(x, y float64) bool
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	Resize(width, height, devicePixelRatio float64)
}

// controls is the keyboard-facing side of the player.
type controls interface {
	Toggle()
	SeekBy(delta float64)
}

// eventLoop translates terminal events into visualizer and player calls.
type eventLoop struct {
	vis    pointerTarget
	player controls
	source *analysis.Source

	buttonDown bool
}

// run handles events until ctx is done or the user quits.
func (l *eventLoop) run(ctx context.Context, screen tcell.Screen) {
	events := make(chan tcell.Event, eventQueueSize)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !l.handle(ev) {
				return
			}
		}
	}
}

// handle processes one event and reports whether to keep running.
func (l *eventLoop) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		l.vis.Resize(float64(cols*dotsPerCellX), float64(rows*dotsPerCellY), 1)

	case *tcell.EventMouse:
		x, y := cellCenter(ev.Position())
		pressed := ev.Buttons()&tcell.Button1 != 0
		switch {
		case pressed && !l.buttonDown:
			l.buttonDown = l.vis.PointerDown(x, y)
			if !l.buttonDown {
				l.vis.PointerMove(x, y)
			}
		case !pressed && l.buttonDown:
			l.buttonDown = false
			l.vis.PointerUp(x, y)
		default:
			l.vis.PointerMove(x, y)
		}

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			l.player.SeekBy(-seekStep)
		case tcell.KeyRight:
			l.player.SeekBy(seekStep)
		case tcell.KeyUp:
			l.changeVolume(volumeStep)
		case tcell.KeyDown:
			l.changeVolume(-volumeStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				l.player.Toggle()
			}
		}
	}
	return true
}

func (l *eventLoop) changeVolume(delta float64) {
	if l.source != nil {
		l.source.SetVolume(l.source.Volume() + delta)
	}
}

// cellCenter maps a terminal cell to the CSS pixel at its center.
func cellCenter(col, row int) (x, y float64) {
	return float64(col*dotsPerCellX) + dotsPerCellX/2.0,
		float64(row*dotsPerCellY) + dotsPerCellY/2.0
}
