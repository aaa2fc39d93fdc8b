package term

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ringscope "github.com/tphakala/go-audio-ringscope"
	"github.com/tphakala/go-audio-ringscope/internal/viewport"
)

const fullCell = rune(0x28FF)

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	t.Cleanup(s.Fini)
	s.SetSize(cols, rows)
	return s
}

func newRenderer(t *testing.T, s tcell.Screen) *Renderer {
	t.Helper()
	r, err := New(s)
	require.NoError(t, err)
	w, h := r.Surface()
	r.BeginFrame()
	r.SetTransform(ringscope.Transform(viewport.Transform(w, h, 1)))
	return r
}

// square is a fan covering ±half around the origin.
func square(half float32) []float32 {
	return []float32{
		0, 0,
		-half, -half,
		half, -half,
		half, half,
		-half, half,
		-half, -half,
	}
}

func TestNew_NoScreen(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoScreen)

	_, err = Factory(nil)()
	assert.ErrorIs(t, err, ErrNoScreen)
}

func TestRenderer_Surface(t *testing.T) {
	s := newScreen(t, 10, 5)
	r, err := New(s)
	require.NoError(t, err)
	w, h := r.Surface()
	assert.Equal(t, 20, w)
	assert.Equal(t, 20, h)
}

func TestRenderer_FanFillsCells(t *testing.T) {
	s := newScreen(t, 10, 5)
	r := newRenderer(t, s)

	r.SetUniformColor(ringscope.Color{R: 1, G: 0, B: 0, A: 1})
	r.UploadVertices(square(100), 2)
	r.DrawTriangleFan(0, 6)
	require.NoError(t, r.EndFrame())

	for y := range 5 {
		for x := range 10 {
			ch, _, style, _ := s.GetContent(x, y)
			require.Equal(t, fullCell, ch, "cell %d,%d", x, y)
			fg, _, _ := style.Decompose()
			assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
		}
	}
}

func TestRenderer_GeometryIsCentered(t *testing.T) {
	s := newScreen(t, 10, 5)
	r := newRenderer(t, s)

	// A 2x2 dot square around the origin lands in the center cell.
	r.SetUniformColor(ringscope.Color{G: 1, A: 1})
	r.UploadVertices(square(1), 2)
	r.DrawTriangleFan(0, 6)
	require.NoError(t, r.EndFrame())

	ch, _, _, _ := s.GetContent(5, 2)
	assert.NotEqual(t, ' ', ch)
	corner, _, _, _ := s.GetContent(0, 0)
	assert.Equal(t, ' ', corner)
}

func TestRenderer_AlphaThreshold(t *testing.T) {
	s := newScreen(t, 4, 2)
	r := newRenderer(t, s)

	r.SetUniformColor(ringscope.Color{R: 1, A: DefaultAlphaThreshold / 2})
	r.UploadVertices(square(100), 2)
	r.DrawTriangleFan(0, 6)
	require.NoError(t, r.EndFrame())

	ch, _, _, _ := s.GetContent(1, 1)
	assert.Equal(t, ' ', ch)

	r.BeginFrame()
	r.SetAlphaThreshold(0)
	r.DrawTriangleFan(0, 6)
	require.NoError(t, r.EndFrame())
	ch, _, _, _ = s.GetContent(1, 1)
	assert.Equal(t, fullCell, ch)
}

func TestRenderer_StripWithStride(t *testing.T) {
	s := newScreen(t, 4, 2)
	r := newRenderer(t, s)

	// Stride 5 as used by phase ribbons; only x and y are read.
	r.SetUniformColor(ringscope.Color{B: 1, A: 1})
	r.UploadVertices([]float32{
		-100, -100, 9, 9, 9,
		-100, 100, 9, 9, 9,
		100, -100, 9, 9, 9,
		100, 100, 9, 9, 9,
	}, 5)
	r.DrawTriangleStrip(0, 4)
	require.NoError(t, r.EndFrame())

	ch, _, _, _ := s.GetContent(3, 1)
	assert.Equal(t, fullCell, ch)
}

func TestRenderer_SliverMarksCentroid(t *testing.T) {
	s := newScreen(t, 10, 5)
	r := newRenderer(t, s)

	r.SetUniformColor(ringscope.Color{R: 1, A: 1})
	r.UploadVertices([]float32{-0.1, -0.1, 0.1, -0.1, 0, 0.05}, 2)
	r.DrawTriangleStrip(0, 3)
	require.NoError(t, r.EndFrame())

	ch, _, _, _ := s.GetContent(5, 2)
	assert.NotEqual(t, ' ', ch)
}

func TestRenderer_FollowsResize(t *testing.T) {
	s := newScreen(t, 4, 2)
	r := newRenderer(t, s)

	s.SetSize(8, 3)
	r.BeginFrame()
	w, h := r.Surface()
	r.SetTransform(ringscope.Transform(viewport.Transform(w, h, 1)))
	r.SetUniformColor(ringscope.Color{R: 1, A: 1})
	r.UploadVertices(square(100), 2)
	r.DrawTriangleFan(0, 6)
	require.NoError(t, r.EndFrame())

	ch, _, _, _ := s.GetContent(7, 2)
	assert.Equal(t, fullCell, ch)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, int32(0), channel(-1))
	assert.Equal(t, int32(255), channel(2))
	assert.Equal(t, int32(128), channel(0.5))
}
