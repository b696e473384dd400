package geometry

// GraphNode is a merged wall endpoint. Position is the centroid of every
// endpoint that collapsed into the node. Edges holds indices into
// WallGraph.Edges.
type GraphNode struct {
	ID       int     `json:"id"`
	Position Point2D `json:"position"`
	Edges    []int   `json:"connectedEdgeIds"`
}

// GraphEdge is one wall as a graph edge between two nodes. Angle is the
// direction from the start node to the end node, in radians.
type GraphEdge struct {
	ID        int     `json:"id"`
	WallID    string  `json:"wallId"`
	StartNode int     `json:"startNodeId"`
	EndNode   int     `json:"endNodeId"`
	Angle     float64 `json:"angle"`
}

// WallGraph is the planar graph induced by a wall set: tolerance-merged
// endpoints as nodes, wall centerlines as edges. Nodes and edges live in
// flat slices and reference each other by index.
type WallGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// BuildWallGraph merges wall endpoints into nodes within
// opts.SnapTolerance and connects them with one edge per wall. Merging is
// transitive union-find, so the node set does not depend on wall order.
// Walls whose endpoints collapse into the same node carry no edge and are
// silently excluded.
func BuildWallGraph(walls []*Wall, opts Options) WallGraph {
	opts = opts.normalized()
	points := make([]Point2D, 0, 2*len(walls))
	for _, w := range walls {
		points = append(points, w.Start, w.End)
	}
	ids := clusterPoints(points, opts.SnapTolerance)
	centers := clusterCentroids(points, ids)

	g := WallGraph{Nodes: make([]GraphNode, len(centers))}
	for i, pos := range centers {
		g.Nodes[i] = GraphNode{ID: i, Position: pos}
	}

	for i, w := range walls {
		start := ids[2*i]
		end := ids[2*i+1]
		if start == end {
			continue // degenerate wall, shorter than the snap tolerance
		}
		edge := GraphEdge{
			ID:        len(g.Edges),
			WallID:    w.ID,
			StartNode: start,
			EndNode:   end,
			Angle:     Angle(Sub(g.Nodes[end].Position, g.Nodes[start].Position)),
		}
		g.Edges = append(g.Edges, edge)
		g.Nodes[start].Edges = append(g.Nodes[start].Edges, edge.ID)
		g.Nodes[end].Edges = append(g.Nodes[end].Edges, edge.ID)
	}
	return g
}
