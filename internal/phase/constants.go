package phase

// Ribbon vertex layout
const (
	// Stride is the number of scalars per ribbon vertex: x, y, nx, ny, miter.
	Stride = 5

	verticesPerPoint = 2
)

// Extrusion defaults
const (
	DefaultMiterLimit = 4.0

	// degenerateLength is the segment length below which a segment has no
	// usable direction and the previous normal is reused.
	degenerateLength = 1e-9

	// minMiterDot guards the miter division at near-reversals.
	minMiterDot = 1e-6
)

// fadeExponent shapes the trail so only the most recent ribbons stand out.
const fadeExponent = 4
