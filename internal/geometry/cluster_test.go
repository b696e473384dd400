package geometry

import "testing"

func TestClusterPointsTransitiveChain(t *testing.T) {
	// a-b and b-c are within tolerance, a-c is not: all three must still
	// collapse into one cluster
	points := []Point2D{{0, 0}, {8, 0}, {16, 0}}
	ids := clusterPoints(points, 10)
	if ids[0] != ids[1] || ids[1] != ids[2] {
		t.Errorf("Expected one transitive cluster, got ids %v", ids)
	}
}

func TestClusterPointsSeparation(t *testing.T) {
	points := []Point2D{{0, 0}, {5, 0}, {100, 100}, {104, 100}}
	ids := clusterPoints(points, 10)
	if ids[0] != ids[1] {
		t.Errorf("Expected points 0 and 1 clustered, got %v", ids)
	}
	if ids[2] != ids[3] {
		t.Errorf("Expected points 2 and 3 clustered, got %v", ids)
	}
	if ids[0] == ids[2] {
		t.Errorf("Expected distant groups separated, got %v", ids)
	}
}

func TestClusterPointsOrderIndependence(t *testing.T) {
	points := []Point2D{{0, 0}, {9, 0}, {18, 0}, {200, 0}, {209, 0}}
	reversed := make([]Point2D, len(points))
	for i, p := range points {
		reversed[len(points)-1-i] = p
	}

	groupSizes := func(ids []int) map[int]int {
		sizes := map[int]int{}
		for _, id := range ids {
			sizes[id]++
		}
		return sizes
	}

	a := groupSizes(clusterPoints(points, 10))
	b := groupSizes(clusterPoints(reversed, 10))
	if len(a) != len(b) {
		t.Fatalf("Expected same cluster count for reversed input, got %d vs %d", len(a), len(b))
	}
	// Both orderings must produce one 3-cluster and one 2-cluster
	counts := map[int]int{}
	for _, n := range a {
		counts[n]++
	}
	if counts[3] != 1 || counts[2] != 1 {
		t.Errorf("Expected clusters of size 3 and 2, got %v", a)
	}
}

func TestClusterCentroids(t *testing.T) {
	points := []Point2D{{0, 0}, {4, 0}, {100, 100}}
	ids := clusterPoints(points, 10)
	centers := clusterCentroids(points, ids)
	if len(centers) != 2 {
		t.Fatalf("Expected 2 centroids, got %d", len(centers))
	}
	if !pointsClose(centers[ids[0]], Point2D{2, 0}, 1e-9) {
		t.Errorf("Expected merged centroid (2,0), got %+v", centers[ids[0]])
	}
	if !pointsClose(centers[ids[2]], Point2D{100, 100}, 1e-9) {
		t.Errorf("Expected singleton centroid (100,100), got %+v", centers[ids[2]])
	}
}
