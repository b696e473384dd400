package geometry

import (
	"math"
	"testing"
)

func TestResolveJunctionsLCorner(t *testing.T) {
	a := &Wall{ID: "a", Start: Point2D{0, 0}, End: Point2D{1000, 0}, Thickness: 100}
	b := &Wall{ID: "b", Start: Point2D{1000, 0}, End: Point2D{1000, 1000}, Thickness: 100}

	joins := ResolveJunctions([]*Wall{a, b}, DefaultOptions())

	// Inner corner faces trim to the exact intersection
	if !pointsClose(a.InteriorLine.End, Point2D{950, 50}, 1e-6) {
		t.Errorf("Expected a interior end (950,50), got %+v", a.InteriorLine.End)
	}
	if !pointsClose(b.InteriorLine.Start, a.InteriorLine.End, 1e-6) {
		t.Errorf("Expected interior faces to share a vertex, got %+v vs %+v",
			b.InteriorLine.Start, a.InteriorLine.End)
	}

	// Outer corner would need extending past the node, which is rejected;
	// both faces meet at the midpoint instead
	if !pointsClose(a.ExteriorLine.End, Point2D{1025, -25}, 1e-6) {
		t.Errorf("Expected exterior fallback at (1025,-25), got %+v", a.ExteriorLine.End)
	}
	if !pointsClose(b.ExteriorLine.Start, a.ExteriorLine.End, 1e-6) {
		t.Errorf("Expected exterior faces to share a vertex, got %+v vs %+v",
			b.ExteriorLine.Start, a.ExteriorLine.End)
	}

	// Far endpoints keep their base offsets
	if !pointsClose(a.InteriorLine.Start, Point2D{0, 50}, 1e-6) {
		t.Errorf("Expected untouched far endpoint (0,50), got %+v", a.InteriorLine.Start)
	}

	if len(joins["a"]) != 1 {
		t.Fatalf("Expected 1 join record for wall a, got %d", len(joins["a"]))
	}
	j := joins["a"][0]
	if j.OtherWallID != "b" {
		t.Errorf("Expected join partner b, got %s", j.OtherWallID)
	}
	if !almostEqual(j.Angle, 90, 1e-6) {
		t.Errorf("Expected 90 degree join, got %v", j.Angle)
	}
	if !pointsClose(j.JoinPoint, Point2D{1000, 0}, 1e-6) {
		t.Errorf("Expected join point at shared node, got %+v", j.JoinPoint)
	}
	if j.JoinType != JoinButt {
		t.Errorf("Expected butt join (exterior fell back), got %s", j.JoinType)
	}
}

func TestResolveJunctionsCollinear(t *testing.T) {
	a := &Wall{ID: "a", Start: Point2D{0, 0}, End: Point2D{1000, 0}, Thickness: 100}
	b := &Wall{ID: "b", Start: Point2D{1000, 0}, End: Point2D{2000, 0}, Thickness: 100}

	joins := ResolveJunctions([]*Wall{a, b}, DefaultOptions())

	// Parallel faces have no intersection, so both sides meet at the seam
	if !pointsClose(a.InteriorLine.End, Point2D{1000, 50}, 1e-6) {
		t.Errorf("Expected interior seam at (1000,50), got %+v", a.InteriorLine.End)
	}
	if !pointsClose(a.ExteriorLine.End, b.ExteriorLine.Start, 1e-6) {
		t.Errorf("Expected exterior seam shared, got %+v vs %+v",
			a.ExteriorLine.End, b.ExteriorLine.Start)
	}

	j := joins["a"][0]
	if j.JoinType != JoinButt {
		t.Errorf("Expected butt join for collinear continuation, got %s", j.JoinType)
	}
	if !almostEqual(j.Angle, 180, 1e-6) {
		t.Errorf("Expected 180 degree continuation, got %v", j.Angle)
	}
}

func TestResolveJunctionsShallowAngleBounded(t *testing.T) {
	// Nearly collinear corner: the miter point shoots far past the trim
	// bound and must be rejected in favor of the midpoint fallback
	a := &Wall{ID: "a", Start: Point2D{0, 0}, End: Point2D{1000, 0}, Thickness: 100}
	b := &Wall{ID: "b", Start: Point2D{1000, 0}, End: Point2D{2000, 30}, Thickness: 100}

	baseEnd := Point2D{1000, 50}
	ResolveJunctions([]*Wall{a, b}, DefaultOptions())

	trim := a.maxTrimDistance(Epsilon)
	for _, p := range []Point2D{a.InteriorLine.End, a.ExteriorLine.End} {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("Resolved endpoint is NaN: %+v", p)
		}
	}
	if d := Distance(a.InteriorLine.End, baseEnd); d > trim {
		t.Errorf("Expected interior endpoint within trim bound %v, moved %v", trim, d)
	}
}

func TestResolveJunctionsTee(t *testing.T) {
	a := &Wall{ID: "a", Start: Point2D{0, 0}, End: Point2D{1000, 0}, Thickness: 100}
	b := &Wall{ID: "b", Start: Point2D{1000, 0}, End: Point2D{2000, 0}, Thickness: 100}
	c := &Wall{ID: "c", Start: Point2D{1000, 0}, End: Point2D{1000, 800}, Thickness: 100}

	joins := ResolveJunctions([]*Wall{a, b, c}, DefaultOptions())

	// The stem trims cleanly against both bar walls
	if !pointsClose(c.InteriorLine.Start, Point2D{950, 50}, 1e-6) {
		t.Errorf("Expected stem interior start (950,50), got %+v", c.InteriorLine.Start)
	}
	if !pointsClose(c.ExteriorLine.Start, Point2D{1050, 50}, 1e-6) {
		t.Errorf("Expected stem exterior start (1050,50), got %+v", c.ExteriorLine.Start)
	}
	if !pointsClose(a.InteriorLine.End, c.InteriorLine.Start, 1e-6) {
		t.Errorf("Expected bar/stem interior vertices shared, got %+v vs %+v",
			a.InteriorLine.End, c.InteriorLine.Start)
	}
	if !pointsClose(b.InteriorLine.Start, c.ExteriorLine.Start, 1e-6) {
		t.Errorf("Expected bar/stem vertices shared, got %+v vs %+v",
			b.InteriorLine.Start, c.ExteriorLine.Start)
	}

	// The bar's exterior runs straight through, untouched
	if !pointsClose(a.ExteriorLine.End, Point2D{1000, -50}, 1e-6) {
		t.Errorf("Expected straight-through exterior at (1000,-50), got %+v", a.ExteriorLine.End)
	}

	for _, w := range []*Wall{a, b, c} {
		if Distance(w.InteriorLine.Start, w.InteriorLine.End) <= Epsilon {
			t.Errorf("Wall %s interior face degenerated", w.ID)
		}
		if Distance(w.ExteriorLine.Start, w.ExteriorLine.End) <= Epsilon {
			t.Errorf("Wall %s exterior face degenerated", w.ID)
		}
	}

	// One join record per ordered pair of distinct walls at the node
	for _, id := range []string{"a", "b", "c"} {
		if len(joins[id]) != 2 {
			t.Errorf("Expected 2 join records for wall %s, got %d", id, len(joins[id]))
		}
	}
	if joins["c"][0].JoinType != JoinMiter {
		t.Errorf("Expected mitered stem, got %s", joins["c"][0].JoinType)
	}
}

func TestResolveJunctionsEmptyAndSingle(t *testing.T) {
	if joins := ResolveJunctions(nil, DefaultOptions()); len(joins) != 0 {
		t.Errorf("Expected no joins for empty input, got %d", len(joins))
	}

	w := &Wall{ID: "solo", Start: Point2D{0, 0}, End: Point2D{1000, 0}, Thickness: 100}
	joins := ResolveJunctions([]*Wall{w}, DefaultOptions())
	if len(joins) != 0 {
		t.Errorf("Expected no joins for a single wall, got %d", len(joins))
	}
	if !pointsClose(w.InteriorLine.Start, Point2D{0, 50}, 1e-6) {
		t.Errorf("Expected base offset faces for a single wall, got %+v", w.InteriorLine)
	}
}

func TestResolveJunctionsSnapTolerance(t *testing.T) {
	// Endpoints 6mm apart still form one junction under the 10mm default
	a := &Wall{ID: "a", Start: Point2D{0, 0}, End: Point2D{1000, 0}, Thickness: 100}
	b := &Wall{ID: "b", Start: Point2D{1006, 0}, End: Point2D{1006, 1000}, Thickness: 100}

	joins := ResolveJunctions([]*Wall{a, b}, DefaultOptions())
	if len(joins["a"]) != 1 {
		t.Fatalf("Expected near-coincident endpoints to join, got %d records", len(joins["a"]))
	}
	if !pointsClose(b.InteriorLine.Start, a.InteriorLine.End, 1e-6) {
		t.Errorf("Expected shared interior vertex across the snap gap")
	}
}
