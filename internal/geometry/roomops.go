package geometry

// Approximate room operations. These deliberately avoid true polygon
// boolean union/difference: merge keeps the larger boundary polygon and
// split buckets vertices by line side. Callers needing exact room topology
// after heavy editing should rerun DetectRooms instead.

// MergeRooms combines two rooms into one. The result keeps the identity
// (id, name, color) of the larger room, adopts its boundary polygon
// unchanged, and unions the wall id and furniture sets.
func MergeRooms(a, b *Room) *Room {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	big, small := a, b
	if b.Area > a.Area {
		big, small = b, a
	}

	merged := *big
	merged.BoundaryWallIDs = unionStrings(big.BoundaryWallIDs, small.BoundaryWallIDs)
	merged.FurnitureIDs = unionStrings(big.FurnitureIDs, small.FurnitureIDs)
	return &merged
}

// SplitRoom divides a room's boundary polygon along a cutting line by
// bucketing vertices by signed side. ok is false when either side ends up
// with fewer than 3 vertices, in which case the room is left untouched.
// The two halves share the original room's wall ids; a following
// re-detection assigns real boundaries.
func SplitRoom(r *Room, cut Line) (left, right *Room, ok bool) {
	if r == nil || len(r.BoundaryPolygon) < 3 {
		return nil, nil, false
	}
	dir := Direction(cut.Start, cut.End)
	if Length(dir) == 0 {
		return nil, nil, false
	}

	var leftPoly, rightPoly []Point2D
	for _, p := range r.BoundaryPolygon {
		if Cross(dir, Sub(p, cut.Start)) >= 0 {
			leftPoly = append(leftPoly, p)
		} else {
			rightPoly = append(rightPoly, p)
		}
	}
	if len(leftPoly) < 3 || len(rightPoly) < 3 {
		return nil, nil, false
	}

	left = derivedRoom(r, leftPoly, r.Name+" A")
	right = derivedRoom(r, rightPoly, r.Name+" B")
	return left, right, true
}

func derivedRoom(src *Room, poly []Point2D, name string) *Room {
	area, centroid := polygonAreaCentroid(poly, Epsilon)
	return &Room{
		ID:              src.ID + "-" + name[len(name)-1:],
		Name:            name,
		BoundaryWallIDs: append([]string(nil), src.BoundaryWallIDs...),
		BoundaryPolygon: poly,
		Area:            roundCenti(area),
		Perimeter:       roundCenti(polygonPerimeter(poly) / 1000),
		Centroid:        centroid,
		Color:           src.Color,
		FurnitureIDs:    append([]string(nil), src.FurnitureIDs...),
	}
}

func unionStrings(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
