package geometry

// clusterPoints groups points whose pairwise distance chains stay within
// tol into clusters via union-find. Merging is transitive, so the result
// does not depend on input order beyond cluster numbering: the returned
// slice maps each point index to a cluster id, numbered in order of first
// appearance.
//
// This deliberately replaces nearest-existing-node snapping, whose final
// node positions depended on wall insertion order for near-tolerance
// clusters.
func clusterPoints(points []Point2D, tol float64) []int {
	parent := make([]int, len(points))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if rb < ra {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if Distance(points[i], points[j]) <= tol {
				union(i, j)
			}
		}
	}

	ids := make([]int, len(points))
	next := 0
	seen := make(map[int]int, len(points))
	for i := range points {
		root := find(i)
		id, ok := seen[root]
		if !ok {
			id = next
			next++
			seen[root] = id
		}
		ids[i] = id
	}
	return ids
}

// clusterCentroids returns the centroid of each cluster produced by
// clusterPoints, indexed by cluster id.
func clusterCentroids(points []Point2D, ids []int) []Point2D {
	n := 0
	for _, id := range ids {
		if id+1 > n {
			n = id + 1
		}
	}
	sums := make([]Point2D, n)
	counts := make([]int, n)
	for i, id := range ids {
		sums[id] = Add(sums[id], points[i])
		counts[id]++
	}
	for i := range sums {
		if counts[i] > 0 {
			sums[i] = Scale(sums[i], 1/float64(counts[i]))
		}
	}
	return sums
}
