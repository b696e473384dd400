package geometry

import (
	"math"
	"sort"
)

// JoinType classifies how two wall faces meet at a junction.
type JoinType string

const (
	// JoinMiter means the faces were trimmed to their direct intersection.
	JoinMiter JoinType = "miter"
	// JoinButt means the intersection was rejected (near-collinear or out
	// of trim bounds) and the faces meet at a fallback point instead.
	JoinButt JoinType = "butt"
)

// JoinData describes the resolved meeting of one wall with one neighbor at
// a shared endpoint. It is ephemeral: recomputed on every geometry pass.
type JoinData struct {
	WallID         string   `json:"wallId"`
	OtherWallID    string   `json:"otherWallId"`
	JoinPoint      Point2D  `json:"joinPoint"`
	JoinType       JoinType `json:"joinType"`
	Angle          float64  `json:"angle"` // degrees, 0-180, between outward directions
	InteriorVertex Point2D  `json:"interiorVertex"`
	ExteriorVertex Point2D  `json:"exteriorVertex"`
}

const (
	sideInterior = 0
	sideExterior = 1
)

// wallEnd identifies one endpoint of one wall in the working set.
type wallEnd struct {
	wall    int
	atStart bool
}

// faceRay is a trim candidate: one face endpoint shooting along its wall,
// away from the junction node.
type faceRay struct {
	end      wallEnd
	side     int
	origin   Point2D // base face endpoint at the node
	dir      Point2D // unit direction away from the node
	trim     float64 // max accepted parametric distance
	resolved bool    // endpoint was set from a valid intersection
}

// ResolveJunctions rebuilds every wall's interior and exterior face so that
// walls sharing an endpoint meet cleanly, and returns the per-wall join
// records. Faces are mutated in place; centerlines are not touched.
//
// The resolver never fails: every rejected intersection degrades to a
// midpoint or to the wall's base offset, so the worst case is an
// un-mitered corner, never a corrupted polygon.
func ResolveJunctions(walls []*Wall, opts Options) map[string][]JoinData {
	opts = opts.normalized()
	joins := make(map[string][]JoinData, len(walls))
	if len(walls) == 0 {
		return joins
	}

	// Step 1: base offsets, kept as the fallback for every later step.
	baseInt := make([]Line, len(walls))
	baseExt := make([]Line, len(walls))
	for i, w := range walls {
		w.RefreshFaces()
		baseInt[i] = w.InteriorLine
		baseExt[i] = w.ExteriorLine
	}

	// Step 2: group endpoints into shared nodes.
	points := make([]Point2D, 0, 2*len(walls))
	ends := make([]wallEnd, 0, 2*len(walls))
	for i := range walls {
		points = append(points, walls[i].Start, walls[i].End)
		ends = append(ends, wallEnd{i, true}, wallEnd{i, false})
	}
	ids := clusterPoints(points, opts.SnapTolerance)
	centers := clusterCentroids(points, ids)
	nodeEnds := make([][]wallEnd, len(centers))
	for i, id := range ids {
		nodeEnds[id] = append(nodeEnds[id], ends[i])
	}

	for nodeID, members := range nodeEnds {
		switch {
		case len(members) == 2 && members[0].wall != members[1].wall:
			resolvePairNode(walls, baseInt, baseExt, members[0], members[1], centers[nodeID], opts, joins)
		case len(members) >= 3:
			resolveMultiNode(walls, baseInt, baseExt, members, centers[nodeID], opts, joins)
		}
	}

	// Step 5: post-validate and restore anything that degenerated.
	for i, w := range walls {
		validateEndpoint(w, baseInt[i], baseExt[i], true, opts.Epsilon)
		validateEndpoint(w, baseInt[i], baseExt[i], false, opts.Epsilon)
		if Distance(w.InteriorLine.Start, w.InteriorLine.End) <= opts.Epsilon {
			w.InteriorLine = baseInt[i]
		}
		if Distance(w.ExteriorLine.Start, w.ExteriorLine.End) <= opts.Epsilon {
			w.ExteriorLine = baseExt[i]
		}
	}

	return joins
}

// awayDirection is the unit vector from the given wall endpoint toward the
// other endpoint, i.e. pointing out of the junction into the wall body.
func awayDirection(w *Wall, atStart bool) Point2D {
	if atStart {
		return Direction(w.Start, w.End)
	}
	return Direction(w.End, w.Start)
}

// facePoint returns a pointer to the face endpoint of w at the given end.
func facePoint(w *Wall, side int, atStart bool) *Point2D {
	l := &w.InteriorLine
	if side == sideExterior {
		l = &w.ExteriorLine
	}
	if atStart {
		return &l.Start
	}
	return &l.End
}

// baseFacePoint returns the untrimmed face endpoint for a wall end.
func baseFacePoint(baseInt, baseExt Line, side int, atStart bool) Point2D {
	l := baseInt
	if side == sideExterior {
		l = baseExt
	}
	if atStart {
		return l.Start
	}
	return l.End
}

// resolvePairNode handles a node shared by exactly two walls: each face
// side is trimmed independently to the ray intersection, or to the
// midpoint of the two base endpoints when the intersection is rejected.
func resolvePairNode(walls []*Wall, baseInt, baseExt []Line, a, b wallEnd, node Point2D, opts Options, joins map[string][]JoinData) {
	wa, wb := walls[a.wall], walls[b.wall]
	da := awayDirection(wa, a.atStart)
	db := awayDirection(wb, b.atStart)
	trimA := wa.maxTrimDistance(opts.Epsilon)
	trimB := wb.maxTrimDistance(opts.Epsilon)

	mitered := true
	for _, side := range []int{sideInterior, sideExterior} {
		oa := baseFacePoint(baseInt[a.wall], baseExt[a.wall], side, a.atStart)
		ob := baseFacePoint(baseInt[b.wall], baseExt[b.wall], side, b.atStart)

		t, u, ok := RayIntersection(oa, da, ob, db)
		var joint Point2D
		if ok && t >= -opts.Epsilon && u >= -opts.Epsilon && t <= trimA && u <= trimB {
			joint = PointAlong(oa, da, t)
		} else {
			// Near-collinear continuation or out-of-bound corner: meeting
			// at the midpoint avoids spikes and closes small seams.
			joint = Midpoint(oa, ob)
			mitered = false
		}
		*facePoint(wa, side, a.atStart) = joint
		*facePoint(wb, side, b.atStart) = joint
	}

	jt := JoinMiter
	if !mitered {
		jt = JoinButt
	}
	angle := outwardAngle(da, db)
	appendJoin(joins, wa, wb, node, jt, angle, a.atStart)
	appendJoin(joins, wb, wa, node, jt, angle, b.atStart)
}

// resolveMultiNode handles nodes shared by three or more wall ends. All
// interior and exterior face rays at the node form one candidate pool; each
// ray independently adopts its best valid intersection, preferring
// same-side partners and then the smallest trim distance. Rays with no
// acceptable candidate keep their base endpoint.
func resolveMultiNode(walls []*Wall, baseInt, baseExt []Line, members []wallEnd, node Point2D, opts Options, joins map[string][]JoinData) {
	rays := make([]faceRay, 0, 2*len(members))
	for _, m := range members {
		w := walls[m.wall]
		dir := awayDirection(w, m.atStart)
		trim := w.maxTrimDistance(opts.Epsilon)
		for _, side := range []int{sideInterior, sideExterior} {
			rays = append(rays, faceRay{
				end:    m,
				side:   side,
				origin: baseFacePoint(baseInt[m.wall], baseExt[m.wall], side, m.atStart),
				dir:    dir,
				trim:   trim,
			})
		}
	}

	for i := range rays {
		r := &rays[i]
		best := Point2D{}
		bestT := math.Inf(1)
		bestSame := false
		found := false
		for j := range rays {
			s := &rays[j]
			if s.end.wall == r.end.wall {
				continue
			}
			t, u, ok := RayIntersection(r.origin, r.dir, s.origin, s.dir)
			if !ok || t < -opts.Epsilon || u < -opts.Epsilon || t > r.trim || u > s.trim {
				continue
			}
			same := s.side == r.side
			if !found || (same && !bestSame) || (same == bestSame && t < bestT) {
				best = PointAlong(r.origin, r.dir, t)
				bestT = t
				bestSame = same
				found = true
			}
		}
		if found {
			*facePoint(walls[r.end.wall], r.side, r.end.atStart) = best
			r.resolved = true
		}
	}

	// Join records: one entry per ordered pair of distinct walls at the node.
	resolvedBoth := make(map[int]int)
	for _, r := range rays {
		if r.resolved {
			resolvedBoth[r.end.wall]++
		}
	}
	sorted := append([]wallEnd(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return walls[sorted[i].wall].ID < walls[sorted[j].wall].ID })
	for _, m := range sorted {
		for _, o := range sorted {
			if o.wall == m.wall {
				continue
			}
			jt := JoinButt
			if resolvedBoth[m.wall] >= 2 {
				jt = JoinMiter
			}
			angle := outwardAngle(awayDirection(walls[m.wall], m.atStart), awayDirection(walls[o.wall], o.atStart))
			appendJoin(joins, walls[m.wall], walls[o.wall], node, jt, angle, m.atStart)
		}
	}
}

// validateEndpoint restores one wall endpoint to its base offsets when the
// resolved cap has collapsed, ballooned, or been dragged past the trim
// bound.
func validateEndpoint(w *Wall, baseInt, baseExt Line, atStart bool, eps float64) {
	ip := facePoint(w, sideInterior, atStart)
	ep := facePoint(w, sideExterior, atStart)
	bi := baseFacePoint(baseInt, baseExt, sideInterior, atStart)
	be := baseFacePoint(baseInt, baseExt, sideExterior, atStart)

	capLen := Distance(*ip, *ep)
	trim := w.maxTrimDistance(eps)
	if capLen <= 10*eps || capLen > w.Thickness*wallTrimFactor ||
		Distance(*ip, bi) > trim || Distance(*ep, be) > trim {
		*ip = bi
		*ep = be
	}
}

// outwardAngle returns the angle between two outward directions in
// degrees, clamped to [0, 180].
func outwardAngle(d1, d2 Point2D) float64 {
	dot := Dot(d1, d2)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot) * 180 / math.Pi
}

func appendJoin(joins map[string][]JoinData, w, other *Wall, node Point2D, jt JoinType, angle float64, atStart bool) {
	joins[w.ID] = append(joins[w.ID], JoinData{
		WallID:         w.ID,
		OtherWallID:    other.ID,
		JoinPoint:      node,
		JoinType:       jt,
		Angle:          angle,
		InteriorVertex: *facePoint(w, sideInterior, atStart),
		ExteriorVertex: *facePoint(w, sideExterior, atStart),
	})
}
