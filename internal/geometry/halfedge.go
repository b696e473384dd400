package geometry

import (
	"math"
	"sort"
)

// HalfEdge is one direction of a graph edge. Next and Twin are indices
// into the half-edge arena; there are no pointers to chase.
type HalfEdge struct {
	Edge  int     // index into WallGraph.Edges
	From  int     // origin node id
	To    int     // destination node id
	Angle float64 // direction angle leaving From, radians in (-pi, pi]
	Next  int     // half-edge continuing the face trace
	Twin  int     // same edge, opposite direction
}

// DetectedCycle is one traced face of the planar graph.
type DetectedCycle struct {
	WallIDs     []string `json:"edgeIds"` // wall ids in trace order
	NodeIDs     []int    `json:"nodeIds"` // node ids in trace order
	IsClockwise bool     `json:"isClockwise"`
	SignedArea  float64  `json:"signedArea"` // mm², negative = clockwise
}

// BuildHalfEdges creates the doubly-connected half-edge arena for a wall
// graph. For every node the outgoing half-edges are sorted by angle, and
// each arriving half-edge links to the outgoing one whose angle is the
// largest strictly less than the arrival's reversed angle (wrapping to the
// maximum). Taking that rotational predecessor turns as sharply clockwise
// as possible at every node, so following Next walks one face of the
// planar embedding with bounded faces counter-clockwise and the unbounded
// face clockwise.
func BuildHalfEdges(g WallGraph) []HalfEdge {
	hes := make([]HalfEdge, 2*len(g.Edges))
	for i, e := range g.Edges {
		fwd, bwd := 2*i, 2*i+1
		hes[fwd] = HalfEdge{Edge: i, From: e.StartNode, To: e.EndNode, Angle: e.Angle, Twin: bwd, Next: -1}
		hes[bwd] = HalfEdge{Edge: i, From: e.EndNode, To: e.StartNode, Angle: oppositeAngle(e.Angle), Twin: fwd, Next: -1}
	}

	// Rotation order per node.
	outgoing := make([][]int, len(g.Nodes))
	for i := range hes {
		outgoing[hes[i].From] = append(outgoing[hes[i].From], i)
	}
	for _, out := range outgoing {
		sort.Slice(out, func(a, b int) bool { return hes[out[a]].Angle < hes[out[b]].Angle })
	}

	for i := range hes {
		out := outgoing[hes[i].To]
		if len(out) == 0 {
			continue
		}
		rev := hes[hes[i].Twin].Angle
		// Last outgoing angle strictly less than rev, wrapping around.
		k := sort.Search(len(out), func(j int) bool { return hes[out[j]].Angle >= rev }) - 1
		if k < 0 {
			k = len(out) - 1
		}
		hes[i].Next = out[k]
	}
	return hes
}

func oppositeAngle(a float64) float64 {
	a += math.Pi
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// FindAllCycles enumerates every face of the planar graph, including the
// unbounded outer face; filtering that out is the room synthesizer's
// concern. A cycle is recorded only when the trace returns exactly to its
// starting half-edge with at least 3 edges. A safety counter bounds each
// trace so malformed Next links cannot loop forever.
func FindAllCycles(g WallGraph) []DetectedCycle {
	hes := BuildHalfEdges(g)
	visited := make([]bool, len(hes))
	var cycles []DetectedCycle

	for start := range hes {
		if visited[start] || hes[start].Next < 0 {
			continue
		}

		var nodes []int
		var wallIDs []string
		cur := start
		closed := false
		for step := 0; step <= len(hes); step++ {
			visited[cur] = true
			nodes = append(nodes, hes[cur].From)
			wallIDs = append(wallIDs, g.Edges[hes[cur].Edge].WallID)
			next := hes[cur].Next
			if next < 0 {
				break
			}
			if next == start {
				closed = true
				break
			}
			if visited[next] {
				break // entered a previously traced face: malformed
			}
			cur = next
		}
		if !closed || len(nodes) < 3 {
			continue
		}

		area := shoelace(g, nodes)
		cycles = append(cycles, DetectedCycle{
			WallIDs:     wallIDs,
			NodeIDs:     nodes,
			IsClockwise: area < 0,
			SignedArea:  area,
		})
	}
	return cycles
}

// shoelace returns the signed polygon area over node positions, in mm².
// Positive means counter-clockwise winding.
func shoelace(g WallGraph, nodes []int) float64 {
	sum := 0.0
	n := len(nodes)
	for i := 0; i < n; i++ {
		p := g.Nodes[nodes[i]].Position
		q := g.Nodes[nodes[(i+1)%n]].Position
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}
