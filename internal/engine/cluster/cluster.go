// Package cluster discovers message clusters in embedding space with
// density-based (DBSCAN) clustering and reduces them to mean centroids.
package cluster

import "errors"

// ErrNoClusters is returned when clustering a non-empty corpus yields no
// non-noise groups. Callers must not persist an empty centroid set.
var ErrNoClusters = errors.New("cluster: no clusters found; try adjusting epsilon or min-points")

// Reduce groups core and edge points by cluster index, discards noise, and
// averages each group coordinate-wise into a centroid. Centroid rows are
// ordered by cluster index. Returns the centroids and the noise count.
func Reduce(vectors [][]float32, classes []Classification) ([][]float32, int, error) {
	if len(vectors) == 0 {
		return nil, 0, nil
	}
	dim := len(vectors[0])

	maxCluster := -1
	noise := 0
	for _, c := range classes {
		if c.Kind == Noise {
			noise++
			continue
		}
		if c.Cluster > maxCluster {
			maxCluster = c.Cluster
		}
	}
	if maxCluster < 0 {
		return nil, noise, ErrNoClusters
	}

	sums := make([][]float64, maxCluster+1)
	counts := make([]int, maxCluster+1)
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, c := range classes {
		if c.Kind == Noise {
			continue
		}
		for d, x := range vectors[i] {
			sums[c.Cluster][d] += float64(x)
		}
		counts[c.Cluster]++
	}

	centroids := make([][]float32, 0, maxCluster+1)
	for id, count := range counts {
		if count == 0 {
			continue
		}
		mean := make([]float32, dim)
		for d := range mean {
			mean[d] = float32(sums[id][d] / float64(count))
		}
		centroids = append(centroids, mean)
	}
	return centroids, noise, nil
}
