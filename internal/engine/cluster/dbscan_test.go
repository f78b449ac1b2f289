package cluster

import (
	"math"
	"math/rand/v2"
	"testing"
)

// jitter returns center displaced by a uniform offset of at most scale per
// coordinate.
func jitter(r *rand.Rand, center []float32, scale float64) []float32 {
	v := make([]float32, len(center))
	for i, c := range center {
		v[i] = c + float32((r.Float64()*2-1)*scale)
	}
	return v
}

// makeCluster generates n points tightly packed around center.
func makeCluster(r *rand.Rand, center []float32, n int, scale float64) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = jitter(r, center, scale)
	}
	return out
}

func TestRunEmpty(t *testing.T) {
	if got := Run(nil, 0.5, 3); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestRunThreeClusters(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	centers := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}

	var vectors [][]float32
	for _, c := range centers {
		vectors = append(vectors, makeCluster(r, c, 5, 0.02)...)
	}

	classes := Run(vectors, 0.3, 3)
	if len(classes) != 15 {
		t.Fatalf("expected 15 classifications, got %d", len(classes))
	}

	// Each block of 5 shares one cluster; blocks are mutually distinct.
	ids := make([]int, 3)
	for b := 0; b < 3; b++ {
		first := classes[b*5]
		if first.Kind == Noise {
			t.Fatalf("block %d: unexpected noise", b)
		}
		ids[b] = first.Cluster
		for i := 1; i < 5; i++ {
			c := classes[b*5+i]
			if c.Kind == Noise {
				t.Errorf("block %d point %d: unexpected noise", b, i)
			}
			if c.Cluster != first.Cluster {
				t.Errorf("block %d point %d: cluster %d, want %d", b, i, c.Cluster, first.Cluster)
			}
		}
	}
	if ids[0] == ids[1] || ids[1] == ids[2] || ids[0] == ids[2] {
		t.Errorf("expected 3 distinct cluster ids, got %v", ids)
	}
}

func TestRunClusterIndicesStartAtZero(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	vectors := makeCluster(r, []float32{1, 0}, 4, 0.01)

	for i, c := range Run(vectors, 0.3, 3) {
		if c.Kind == Noise {
			t.Fatalf("point %d: unexpected noise", i)
		}
		if c.Cluster != 0 {
			t.Errorf("point %d: cluster %d, want 0", i, c.Cluster)
		}
	}
}

func TestRunMarksOutliersNoise(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	vectors := makeCluster(r, []float32{1, 0, 0}, 6, 0.02)
	vectors = append(vectors, []float32{-5, -5, -5}, []float32{9, 9, 9})

	classes := Run(vectors, 0.3, 3)
	for i := 0; i < 6; i++ {
		if classes[i].Kind == Noise {
			t.Errorf("clustered point %d marked noise", i)
		}
	}
	for i := 6; i < 8; i++ {
		if classes[i].Kind != Noise {
			t.Errorf("outlier %d: kind %v, want noise", i, classes[i].Kind)
		}
	}
}

func TestRunSparsePointsAreAllNoise(t *testing.T) {
	vectors := [][]float32{{0, 0}, {10, 0}, {0, 10}, {10, 10}}
	for i, c := range Run(vectors, 0.5, 2) {
		if c.Kind != Noise {
			t.Errorf("point %d: kind %v, want noise", i, c.Kind)
		}
	}
}

func TestRunCoreAndEdgeKinds(t *testing.T) {
	// The middle point sees all three within epsilon and is core; the two
	// endpoints see only two points each and are density-reachable edges.
	vectors := [][]float32{{-0.4}, {0}, {0.4}}
	classes := Run(vectors, 0.5, 3)

	if classes[1].Kind != Core {
		t.Errorf("middle point: kind %v, want core", classes[1].Kind)
	}
	for _, i := range []int{0, 2} {
		if classes[i].Kind != Edge {
			t.Errorf("endpoint %d: kind %v, want edge", i, classes[i].Kind)
		}
		if classes[i].Cluster != classes[1].Cluster {
			t.Errorf("endpoint %d: cluster %d, want %d", i, classes[i].Cluster, classes[1].Cluster)
		}
	}
}

func TestEuclidean(t *testing.T) {
	got := euclidean([]float32{0, 0}, []float32{3, 4})
	if math.Abs(got-5) > 1e-9 {
		t.Errorf("euclidean = %f, want 5", got)
	}
}
