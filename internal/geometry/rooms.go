package geometry

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Room is an enclosed region detected from the wall graph. Area and
// Perimeter are rounded to 0.01 in m² and m respectively.
type Room struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	BoundaryWallIDs []string  `json:"boundaryWallIds"`
	BoundaryPolygon []Point2D `json:"boundaryPolygon"`
	Area            float64   `json:"area"`      // m²
	Perimeter       float64   `json:"perimeter"` // m
	Centroid        Point2D   `json:"centroid"`
	Color           string    `json:"color"`
	UserOverride    bool      `json:"userOverride"`
	FurnitureIDs    []string  `json:"furnitureIds,omitempty"`
}

// DetectionStats summarizes one detection run.
type DetectionStats struct {
	TotalNodes      int   `json:"totalNodes"`
	TotalEdges      int   `json:"totalEdges"`
	CyclesFound     int   `json:"cyclesFound"`
	RoomsCreated    int   `json:"roomsCreated"`
	ExecutionTimeMs int64 `json:"executionTimeMs"`
}

// DetectionResult is the full output of a detection run. Warnings record
// recoverable problems; the run itself never fails.
type DetectionResult struct {
	Rooms    []*Room        `json:"rooms"`
	Warnings []string       `json:"warnings"`
	Stats    DetectionStats `json:"stats"`
}

// roomPalette colors rooms deterministically by creation order.
var roomPalette = []string{
	"#4F9DDE", "#E8A33D", "#6BBF59", "#C96FB0",
	"#E56B6F", "#8A7FD4", "#55B8A8", "#D4C05A",
}

// DetectRooms runs the full room pipeline: graph construction, half-edge
// face enumeration and room synthesis. It is a pure function of the wall
// list; identity across reruns is layered on top by MergeRoomDetections.
func DetectRooms(walls []*Wall, opts Options) *DetectionResult {
	start := time.Now()
	opts = opts.normalized()
	result := &DetectionResult{Rooms: []*Room{}, Warnings: []string{}}

	if len(walls) < 3 {
		result.Warnings = append(result.Warnings, "at least 3 walls are required to enclose a room")
		result.Stats.ExecutionTimeMs = time.Since(start).Milliseconds()
		return result
	}

	g := BuildWallGraph(walls, opts)
	cycles := FindAllCycles(g)
	result.Stats.TotalNodes = len(g.Nodes)
	result.Stats.TotalEdges = len(g.Edges)
	result.Stats.CyclesFound = len(cycles)

	byID := make(map[string]*Wall, len(walls))
	for _, w := range walls {
		byID[w.ID] = w
	}

	// Under the rotation rule every bounded face traces counter-clockwise
	// and the unbounded outer face traces clockwise, so winding alone
	// separates rooms from the outer boundary. The signature set guards
	// against tracing artifacts producing the same wall loop twice.
	seen := make(map[string]bool, len(cycles))
	for _, cyc := range cycles {
		if cyc.IsClockwise {
			continue
		}
		sig := RoomSignature(cyc.WallIDs)
		if seen[sig] {
			continue
		}
		seen[sig] = true

		poly := insetCyclePolygon(g, cyc, byID, opts.Epsilon)
		if len(poly) < 3 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("discarding degenerate cycle with %d vertices", len(poly)))
			continue
		}

		area, centroid := polygonAreaCentroid(poly, opts.Epsilon)
		if area < opts.MinRoomArea || area > opts.MaxRoomArea {
			continue
		}

		idx := len(result.Rooms)
		result.Rooms = append(result.Rooms, &Room{
			ID:              uuid.New().String(),
			Name:            fmt.Sprintf("Room %d", idx+1),
			BoundaryWallIDs: append([]string(nil), cyc.WallIDs...),
			BoundaryPolygon: poly,
			Area:            roundCenti(area),
			Perimeter:       roundCenti(polygonPerimeter(poly) / 1000),
			Centroid:        centroid,
			Color:           roomPalette[idx%len(roomPalette)],
		})
	}

	result.Stats.RoomsCreated = len(result.Rooms)
	if len(result.Rooms) == 0 {
		result.Warnings = append(result.Warnings, "no closed wall loops enclose a room")
	}
	result.Stats.ExecutionTimeMs = time.Since(start).Milliseconds()
	return result
}

// insetCyclePolygon shifts each cycle node inward by the average of the two
// adjacent walls' half-thickness offsets, yielding the room's habitable
// boundary rather than the wall centerlines.
func insetCyclePolygon(g WallGraph, cyc DetectedCycle, walls map[string]*Wall, eps float64) []Point2D {
	n := len(cyc.NodeIDs)
	if n < 3 {
		return nil
	}
	sign := 1.0
	if cyc.IsClockwise {
		sign = -1.0
	}
	poly := make([]Point2D, 0, n)
	for i := 0; i < n; i++ {
		pos := g.Nodes[cyc.NodeIDs[i]].Position
		prevPos := g.Nodes[cyc.NodeIDs[(i-1+n)%n]].Position
		nextPos := g.Nodes[cyc.NodeIDs[(i+1)%n]].Position

		offPrev := edgeOffset(prevPos, pos, walls[cyc.WallIDs[(i-1+n)%n]])
		offNext := edgeOffset(pos, nextPos, walls[cyc.WallIDs[i]])
		avg := Scale(Add(offPrev, offNext), 0.5)
		if Length(avg) <= eps {
			// Degenerate averaging: keep the raw node position.
			poly = append(poly, pos)
			continue
		}
		poly = append(poly, Add(pos, Scale(avg, sign)))
	}
	return poly
}

// edgeOffset is the perpendicular of the traversal direction scaled by the
// wall's half thickness; zero when the wall is unknown or degenerate.
func edgeOffset(from, to Point2D, w *Wall) Point2D {
	if w == nil {
		return Point2D{}
	}
	return Scale(Perp(Direction(from, to)), w.Thickness/2)
}

// polygonAreaCentroid returns the polygon area in m² and its
// shoelace-weighted centroid in mm. Degenerate polygons fall back to the
// arithmetic mean of the vertices.
func polygonAreaCentroid(poly []Point2D, eps float64) (float64, Point2D) {
	ring := make(orb.Ring, 0, len(poly)+1)
	for _, p := range poly {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	ring = append(ring, ring[0])

	centroid, area := planar.CentroidArea(ring)
	if math.Abs(area) <= eps || math.IsNaN(centroid[0]) || math.IsNaN(centroid[1]) {
		return 0, meanPoint(poly)
	}
	return math.Abs(area) / 1e6, Point2D{X: centroid[0], Y: centroid[1]}
}

func polygonPerimeter(poly []Point2D) float64 {
	sum := 0.0
	for i := range poly {
		sum += Distance(poly[i], poly[(i+1)%len(poly)])
	}
	return sum
}

func meanPoint(poly []Point2D) Point2D {
	var sum Point2D
	for _, p := range poly {
		sum = Add(sum, p)
	}
	if len(poly) == 0 {
		return sum
	}
	return Scale(sum, 1/float64(len(poly)))
}

func roundCenti(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoomSignature is the order-independent identity key of a room: its
// boundary wall ids, sorted and joined.
func RoomSignature(wallIDs []string) string {
	ids := append([]string(nil), wallIDs...)
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// MergeRoomDetections reassigns identity from a previous detection to a
// new one. A detected room whose boundary signature matches a previous
// room inherits that room's id, color, furniture links and, when the user
// renamed it, its name. Unmatched rooms keep their fresh identity.
//
// This is a pure signature match, not a geometric overlap match: changing
// the boundary wall set by even one wall loses the identity.
func MergeRoomDetections(previous, detected []*Room) []*Room {
	bySig := make(map[string]*Room, len(previous))
	for _, r := range previous {
		bySig[RoomSignature(r.BoundaryWallIDs)] = r
	}
	for _, r := range detected {
		prev, ok := bySig[RoomSignature(r.BoundaryWallIDs)]
		if !ok {
			continue
		}
		r.ID = prev.ID
		r.Color = prev.Color
		r.FurnitureIDs = prev.FurnitureIDs
		if prev.UserOverride {
			r.Name = prev.Name
			r.UserOverride = true
		}
	}
	return detected
}
