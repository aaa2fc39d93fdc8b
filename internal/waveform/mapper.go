package waveform

import (
	"math"

	"github.com/tphakala/go-audio-ringscope/internal/angles"
	"github.com/tphakala/go-audio-ringscope/internal/simdops"
)

// Mapper converts an envelope into a triangle-strip seek band laid around
// the circle, one bucket per evenly spaced angle.
//
// Geometry buffers are allocated once per envelope and rewritten in place.
type Mapper struct {
	env  *Envelope
	dirs *angles.Table
	cos  []float32
	sin  []float32

	strip []float32
	head  []float32
	hover []float32
}

// NewMapper creates a mapper for env whose first bucket sits at start radians.
func NewMapper(env *Envelope, start float64) (*Mapper, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	dirs := angles.New(env.Len(), start)
	return &Mapper{
		env:   env,
		dirs:  dirs,
		cos:   simdops.Convert[float32](nil, dirs.Cos),
		sin:   simdops.Convert[float32](nil, dirs.Sin),
		strip: make([]float32, env.Len()*stripScalarsPerBucket),
		head:  make([]float32, markerScalars),
		hover: make([]float32, markerScalars),
	}, nil
}

// Map rewrites the seek band for the given layout and volume.
//
// For bucket j the strip holds angle[j]*(centerAxis + min[j]*volume*halfHeight)
// followed by angle[j]*(centerAxis + max[j]*volume*halfHeight). The result
// is exactly 4*Buckets scalars in bucket order and is owned by the mapper.
func (m *Mapper) Map(centerAxis, halfHeight, volume float32) []float32 {
	volumeHeightScale := volume * halfHeight
	s := m.strip
	for j := range m.env.Len() {
		minScale := centerAxis + m.env.Min[j]*volumeHeightScale
		maxScale := centerAxis + m.env.Max[j]*volumeHeightScale
		k := j * stripScalarsPerBucket
		s[k] = m.cos[j] * minScale
		s[k+1] = m.sin[j] * minScale
		s[k+2] = m.cos[j] * maxScale
		s[k+3] = m.sin[j] * maxScale
	}
	return s
}

// Buckets returns the number of envelope buckets.
func (m *Mapper) Buckets() int {
	return m.env.Len()
}

// VertexCount returns the number of strip vertices, two per bucket.
func (m *Mapper) VertexCount() int {
	return m.env.Len() * 2
}

// PlayedBuckets returns how many leading buckets lie before headAngle.
// Their strip vertices are the first 2*PlayedBuckets vertices.
func (m *Mapper) PlayedBuckets(headAngle float64) int {
	if !(headAngle > 0) {
		return 0
	}
	n := m.env.Len()
	played := int(math.Ceil(headAngle / angles.TwoPi * float64(n)))
	return min(played, n)
}

// Head rewrites the playback head marker: a radial bar of the given width
// at angle, spanning inner to outer radius. Returned as a 4-vertex strip.
func (m *Mapper) Head(angle float64, inner, outer, width float32) []float32 {
	m.markerInto(m.head, angle, inner, outer, width)
	return m.head
}

// Hover rewrites the hover marker, shown while a pointer is over the band.
func (m *Mapper) Hover(angle float64, inner, outer, width float32) []float32 {
	m.markerInto(m.hover, angle, inner, outer, width)
	return m.hover
}

func (m *Mapper) markerInto(dst []float32, angle float64, inner, outer, width float32) {
	dx, dy := m.dirs.Direction(angle)
	ux, uy := float32(dx), float32(dy)
	// Perpendicular, scaled to half the bar width.
	px, py := -uy*width/2, ux*width/2

	dst[0], dst[1] = ux*inner+px, uy*inner+py
	dst[2], dst[3] = ux*inner-px, uy*inner-py
	dst[4], dst[5] = ux*outer+px, uy*outer+py
	dst[6], dst[7] = ux*outer-px, uy*outer-py
}

// AngleAt returns the band angle under the point (x, y), in geometry
// coordinates centered on the ring.
func (m *Mapper) AngleAt(x, y float64) float64 {
	return m.dirs.AngleOf(x, y)
}

// HeadAngle returns the head angle for position within duration, in [0, 2π).
// It is 0 when the duration is unknown (not positive or not finite).
func HeadAngle(position, duration float64) float64 {
	if !(duration > 0) || math.IsInf(duration, 1) || math.IsNaN(position) {
		return 0
	}
	a := angles.TwoPi * (position / duration)
	switch {
	case a <= 0:
		return 0
	case a >= angles.TwoPi:
		return math.Nextafter(angles.TwoPi, 0)
	}
	return a
}

// PositionForAngle maps an angle on the band back to a playback position.
func PositionForAngle(angle, duration float64) float64 {
	if !(duration > 0) || math.IsInf(duration, 1) {
		return 0
	}
	return angles.Normalize(angle) / angles.TwoPi * duration
}

// HitTest reports whether a point at distance radius from the center lies
// on the band, widened by slop on both sides.
func HitTest(x, y, centerAxis, halfHeight, slop float64) bool {
	r := math.Hypot(x, y)
	return math.Abs(r-centerAxis) <= halfHeight+slop
}
