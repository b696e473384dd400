package geometry

// Wall is a straight wall segment: a centerline in mm plus a thickness.
// InteriorLine and ExteriorLine are derived faces, recomputed from the
// centerline on every geometry pass; they are never the source of truth.
type Wall struct {
	ID             string   `json:"id"`
	Start          Point2D  `json:"startPoint"`
	End            Point2D  `json:"endPoint"`
	Thickness      float64  `json:"thickness"` // mm, > 0
	Material       string   `json:"material,omitempty"`
	ConnectedWalls []string `json:"connectedWalls,omitempty"`

	InteriorLine Line `json:"interiorLine"`
	ExteriorLine Line `json:"exteriorLine"`
}

// Length returns the centerline length in mm.
func (w *Wall) Length() float64 {
	return Distance(w.Start, w.End)
}

// FacePolygon returns the trimmed wall outline ready for rendering:
// interior start, interior end, exterior end, exterior start.
func (w *Wall) FacePolygon() []Point2D {
	return []Point2D{
		w.InteriorLine.Start,
		w.InteriorLine.End,
		w.ExteriorLine.End,
		w.ExteriorLine.Start,
	}
}

// ComputeOffsetLines offsets the centerline from start to end by half the
// thickness to each side. The interior face is on the +perpendicular (90°
// CCW) side, the exterior on the -perpendicular side; which physical side
// that corresponds to is the caller's concern. A degenerate centerline
// yields both faces collapsed onto it.
func ComputeOffsetLines(start, end Point2D, thickness float64) (interior, exterior Line) {
	dir := Direction(start, end)
	half := Scale(Perp(dir), thickness/2)
	interior = Line{Start: Add(start, half), End: Add(end, half)}
	exterior = Line{Start: Sub(start, half), End: Sub(end, half)}
	return interior, exterior
}

// RefreshFaces recomputes the wall's base offset faces from its centerline.
func (w *Wall) RefreshFaces() {
	w.InteriorLine, w.ExteriorLine = ComputeOffsetLines(w.Start, w.End, w.Thickness)
}

// maxTrimDistance is how far a junction may move this wall's face endpoints
// along the wall: min(thickness*6, length*1.5), floored at 10*epsilon so
// hairline walls still get a usable bound.
func (w *Wall) maxTrimDistance(eps float64) float64 {
	d := w.Thickness * wallTrimFactor
	if l := w.Length() * 1.5; l < d {
		d = l
	}
	if floor := 10 * eps; d < floor {
		d = floor
	}
	return d
}
