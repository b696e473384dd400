package geometry

// Options bundles the numeric tolerances shared by every stage of the
// engine. A single Options value is threaded through junction resolution,
// graph construction and room detection so the stages agree on what
// "the same point" means.
type Options struct {
	// Epsilon is the zero tolerance in mm. Defaults to the package Epsilon.
	Epsilon float64 `json:"epsilon"`
	// SnapTolerance is the endpoint merge distance in mm. Wall endpoints
	// closer than this collapse into one graph node.
	SnapTolerance float64 `json:"snapTolerance"`
	// MinRoomArea filters out sliver cycles, in m².
	MinRoomArea float64 `json:"minRoomArea"`
	// MaxRoomArea filters out gross graph artifacts, in m².
	MaxRoomArea float64 `json:"maxRoomArea"`
}

// Default tolerance values, tuned for millimeter plan coordinates.
const (
	DefaultSnapTolerance = 10.0   // mm
	DefaultMinRoomArea   = 0.5    // m²
	DefaultMaxRoomArea   = 1000.0 // m²

	// wallTrimFactor bounds how far a junction may pull a face endpoint
	// away from its base offset, as a multiple of wall thickness.
	wallTrimFactor = 6.0
)

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Epsilon:       Epsilon,
		SnapTolerance: DefaultSnapTolerance,
		MinRoomArea:   DefaultMinRoomArea,
		MaxRoomArea:   DefaultMaxRoomArea,
	}
}

// normalized fills zero fields with defaults so callers can pass a
// partially populated Options.
func (o Options) normalized() Options {
	if o.Epsilon <= 0 {
		o.Epsilon = Epsilon
	}
	if o.SnapTolerance <= 0 {
		o.SnapTolerance = DefaultSnapTolerance
	}
	if o.MinRoomArea <= 0 {
		o.MinRoomArea = DefaultMinRoomArea
	}
	if o.MaxRoomArea <= 0 {
		o.MaxRoomArea = DefaultMaxRoomArea
	}
	return o
}
