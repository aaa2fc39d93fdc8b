package main

import (
	"fmt"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

type fakeTarget struct {
	calls   []string
	capture bool
}

func (f *fakeTarget) PointerDown(x, y float64) bool {
	f.calls = append(f.calls, fmt.Sprintf("down %g,%g", x, y))
	return f.capture
}

func (f *fakeTarget) PointerMove(x, y float64) {
	f.calls = append(f.calls, fmt.Sprintf("move %g,%g", x, y))
}

func (f *fakeTarget) PointerUp(x, y float64) {
	f.calls = append(f.calls, fmt.Sprintf("up %g,%g", x, y))
}

func (f *fakeTarget) Resize(w, h, dpr float64) {
	f.calls = append(f.calls, fmt.Sprintf("resize %gx%g@%g", w, h, dpr))
}

type fakeControls struct {
	toggles int
	seeks   []float64
}

func (f *fakeControls) Toggle()              { f.toggles++ }
func (f *fakeControls) SeekBy(delta float64) { f.seeks = append(f.seeks, delta) }

func TestEventLoop_Drag(t *testing.T) {
	target := &fakeTarget{capture: true}
	l := &eventLoop{vis: target, player: &fakeControls{}}

	assert.True(t, l.handle(tcell.NewEventMouse(10, 5, tcell.Button1, 0)))
	assert.True(t, l.handle(tcell.NewEventMouse(11, 5, tcell.Button1, 0)))
	assert.True(t, l.handle(tcell.NewEventMouse(12, 6, tcell.ButtonNone, 0)))
	assert.True(t, l.handle(tcell.NewEventMouse(13, 6, tcell.ButtonNone, 0)))

	assert.Equal(t, []string{
		"down 21,22",
		"move 23,22",
		"up 25,26",
		"move 27,26",
	}, target.calls)
}

func TestEventLoop_PressOffBandHovers(t *testing.T) {
	target := &fakeTarget{capture: false}
	l := &eventLoop{vis: target, player: &fakeControls{}}

	l.handle(tcell.NewEventMouse(0, 0, tcell.Button1, 0))
	l.handle(tcell.NewEventMouse(0, 0, tcell.ButtonNone, 0))

	assert.Equal(t, []string{"down 1,2", "move 1,2", "move 1,2"}, target.calls)
}

func TestEventLoop_Resize(t *testing.T) {
	target := &fakeTarget{}
	l := &eventLoop{vis: target, player: &fakeControls{}}

	l.handle(tcell.NewEventResize(80, 24))
	assert.Equal(t, []string{"resize 160x96@1"}, target.calls)
}

func TestEventLoop_Keys(t *testing.T) {
	ctl := &fakeControls{}
	l := &eventLoop{vis: &fakeTarget{}, player: ctl}

	assert.True(t, l.handle(tcell.NewEventKey(tcell.KeyRune, ' ', 0)))
	assert.True(t, l.handle(tcell.NewEventKey(tcell.KeyLeft, 0, 0)))
	assert.True(t, l.handle(tcell.NewEventKey(tcell.KeyRight, 0, 0)))
	assert.True(t, l.handle(tcell.NewEventKey(tcell.KeyUp, 0, 0)), "volume without a source is ignored")

	assert.Equal(t, 1, ctl.toggles)
	assert.Equal(t, []float64{-seekStep, seekStep}, ctl.seeks)

	assert.False(t, l.handle(tcell.NewEventKey(tcell.KeyRune, 'q', 0)))
	assert.False(t, l.handle(tcell.NewEventKey(tcell.KeyEscape, 0, 0)))
	assert.False(t, l.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, 0)))
}

func TestCellCenter(t *testing.T) {
	x, y := cellCenter(3, 2)
	assert.InDelta(t, 7, x, 0)
	assert.InDelta(t, 10, y, 0)
}
