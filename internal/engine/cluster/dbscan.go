package cluster

import "math"

// Kind is the density classification of one point.
type Kind int

const (
	// Noise points belong to no cluster and are discarded by Reduce.
	Noise Kind = iota
	// Core points have at least minPoints neighbors within epsilon.
	Core
	// Edge points are within epsilon of a core point but are not dense
	// themselves.
	Edge
)

func (k Kind) String() string {
	switch k {
	case Core:
		return "core"
	case Edge:
		return "edge"
	default:
		return "noise"
	}
}

// Classification is the clustering outcome for one point. Cluster is the
// 0-based cluster index and is meaningful only when Kind is Core or Edge.
type Classification struct {
	Kind    Kind
	Cluster int
}

// Run executes DBSCAN over the vectors using Euclidean distance.
//
// epsilon is the neighborhood radius; minPoints the neighbor count (the
// point itself included) required for a point to be core. Returns one
// Classification per input vector, in input order.
func Run(vectors [][]float32, epsilon float64, minPoints int) []Classification {
	n := len(vectors)
	if n == 0 {
		return nil
	}

	const (
		undefined = 0
		noise     = -1
	)

	labels := make([]int, n) // 0 = undefined, -1 = noise, >0 = cluster id
	core := make([]bool, n)
	clusterID := 0

	for i := 0; i < n; i++ {
		if labels[i] != undefined {
			continue
		}

		neighbors := rangeQuery(vectors, i, epsilon)
		if len(neighbors) < minPoints {
			labels[i] = noise
			continue
		}

		// Start a new cluster.
		clusterID++
		labels[i] = clusterID
		core[i] = true

		// Seed set: neighbors minus point i.
		seed := make([]int, 0, len(neighbors))
		for _, j := range neighbors {
			if j != i {
				seed = append(seed, j)
			}
		}

		for len(seed) > 0 {
			q := seed[0]
			seed = seed[1:]

			if labels[q] == noise {
				// Reclaimed noise point: reachable but not dense.
				labels[q] = clusterID
			}
			if labels[q] != undefined {
				continue
			}
			labels[q] = clusterID

			qNeighbors := rangeQuery(vectors, q, epsilon)
			if len(qNeighbors) >= minPoints {
				core[q] = true
				seed = append(seed, qNeighbors...)
			}
		}
	}

	classes := make([]Classification, n)
	for i, l := range labels {
		switch {
		case l == noise:
			classes[i] = Classification{Kind: Noise}
		case core[i]:
			classes[i] = Classification{Kind: Core, Cluster: l - 1}
		default:
			classes[i] = Classification{Kind: Edge, Cluster: l - 1}
		}
	}
	return classes
}

// rangeQuery returns indices of all vectors within epsilon of vectors[idx],
// the query point itself included.
func rangeQuery(vectors [][]float32, idx int, epsilon float64) []int {
	var result []int
	q := vectors[idx]
	for i, v := range vectors {
		if euclidean(q, v) <= epsilon {
			result = append(result, i)
		}
	}
	return result
}

// euclidean computes the Euclidean distance between two vectors. For the
// unit-normalized embeddings this engine works on it is a monotonic
// transform of cosine distance.
func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
