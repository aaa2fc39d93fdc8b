// Package phase builds the stereo phase trace: each frame's left/right
// samples become a constant-width ribbon, and a bounded history of past
// ribbons fades out behind the current one.
package phase

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-ringscope/internal/simdops"
)

// Builder extrudes a polyline of stereo sample pairs into a triangle-strip
// ribbon. All buffers are sized for a fixed point count and reused.
type Builder struct {
	points int

	xs, ys []float32
	xy     []float32
	nx, ny []float32
	miter  []float32

	out []float32

	miterLimit float32
	ops        *simdops.Ops[float32]
}

// NewBuilder creates a builder for frames of n sample pairs.
// A miterLimit below 1 is raised to 1.
func NewBuilder(n int, miterLimit float64) (*Builder, error) {
	if n < 1 {
		return nil, fmt.Errorf("phase ribbon needs at least one point, got %d", n)
	}
	return &Builder{
		points:     n,
		xs:         make([]float32, n),
		ys:         make([]float32, n),
		xy:         make([]float32, n*2),
		nx:         make([]float32, n),
		ny:         make([]float32, n),
		miter:      make([]float32, n),
		out:        make([]float32, n*verticesPerPoint*Stride),
		miterLimit: float32(max(miterLimit, 1)),
		ops:        simdops.For[float32](),
	}, nil
}

// Points returns the number of sample pairs per ribbon.
func (b *Builder) Points() int {
	return b.points
}

// VertexCount returns the number of strip vertices per ribbon.
func (b *Builder) VertexCount() int {
	return b.points * verticesPerPoint
}

// Build maps (left[i], right[i]) to points scaled by radius and extrudes them
// by width on both sides. The returned ribbon has Stride scalars per vertex,
// two vertices per point, and is overwritten by the next call.
func (b *Builder) Build(left, right []float32, radius, width float32) ([]float32, error) {
	if len(left) != b.points || len(right) != b.points {
		return nil, fmt.Errorf("phase ribbon expects %d samples per channel, got %d/%d",
			b.points, len(left), len(right))
	}

	b.ops.Scale(b.xs, left, radius)
	b.ops.Scale(b.ys, right, radius)
	b.ops.Interleave2(b.xy, b.xs, b.ys)

	b.computeNormals()

	out := b.out
	for i := range b.points {
		x, y := b.xy[i*2], b.xy[i*2+1]
		nx, ny, m := b.nx[i], b.ny[i], b.miter[i]
		ox, oy := nx*width*m, ny*width*m

		k := i * verticesPerPoint * Stride
		out[k] = x + ox
		out[k+1] = y + oy
		out[k+2] = nx
		out[k+3] = ny
		out[k+4] = m

		out[k+5] = x - ox
		out[k+6] = y - oy
		out[k+7] = -nx
		out[k+8] = -ny
		out[k+9] = m
	}
	return out, nil
}

// computeNormals fills per-point normals and miter lengths. Endpoints take
// their segment's normal; interior points take the normalized sum of the
// adjacent segment normals, with the miter length that keeps the ribbon
// width constant, clamped to the miter limit.
func (b *Builder) computeNormals() {
	n := b.points
	if n == 1 {
		b.nx[0], b.ny[0], b.miter[0] = 0, 1, 1
		return
	}

	// Segment normals are written into slots 0..n-2, then resolved per point
	// from the last slot backwards so each read sees unmodified segments.
	var px, py float32 = 0, 1
	for i := range n - 1 {
		dx := b.xy[(i+1)*2] - b.xy[i*2]
		dy := b.xy[(i+1)*2+1] - b.xy[i*2+1]
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l > degenerateLength {
			px, py = -dy/l, dx/l
		}
		b.nx[i], b.ny[i] = px, py
	}

	b.nx[n-1], b.ny[n-1], b.miter[n-1] = b.nx[n-2], b.ny[n-2], 1
	for i := n - 2; i >= 1; i-- {
		ax, ay := b.nx[i-1], b.ny[i-1] // incoming segment
		cx, cy := b.nx[i], b.ny[i]     // outgoing segment
		mx, my := ax+cx, ay+cy
		ml := float32(math.Hypot(float64(mx), float64(my)))
		if ml <= degenerateLength {
			// Full reversal: fall back to the incoming normal at the limit.
			b.nx[i], b.ny[i], b.miter[i] = ax, ay, b.miterLimit
			continue
		}
		mx, my = mx/ml, my/ml
		m := b.miterLimit
		if dot := mx*ax + my*ay; dot > minMiterDot {
			m = min(1/dot, b.miterLimit)
		}
		b.nx[i], b.ny[i], b.miter[i] = mx, my, m
	}
	b.miter[0] = 1
}
