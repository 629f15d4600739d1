package analysis

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hyperjump/autoeval/internal/models"
	"gonum.org/v1/gonum/stat"
)

const (
	maxClusters          = 3
	defaultClusterSeed   = 42
	defaultMaxIterations = 300
)

// Clusterer partitions standardized rows with k-means, k = min(3, rows).
type Clusterer struct {
	Seed    int64
	MaxIter int
}

// NewClusterer returns a Clusterer with the default seed and iteration bound.
func NewClusterer() *Clusterer {
	return &Clusterer{Seed: defaultClusterSeed, MaxIter: defaultMaxIterations}
}

// Run clusters the projection and charts the member count of each non-empty cluster.
func (c *Clusterer) Run(p *Projection) (Outcome, error) {
	if p.Empty() || p.Rows() < 2 {
		return warningOutcome("Insufficient data for clustering (need >= 2 rows)."), nil
	}
	X := standardize(p)
	k := maxClusters
	if p.Rows() < k {
		k = p.Rows()
	}
	km := &kmeans{k: k, maxIter: c.MaxIter, rng: rand.New(rand.NewSource(c.Seed))}
	assign := km.fit(X)

	counts := make([]int, k)
	for _, a := range assign {
		counts[a]++
	}
	// Clusters that received no rows (duplicate points) are not patterns.
	chart := models.ChartData{Labels: []string{}, Values: []float64{}}
	for _, n := range counts {
		if n == 0 {
			continue
		}
		chart.Labels = append(chart.Labels, fmt.Sprintf("Cluster %d", len(chart.Labels)+1))
		chart.Values = append(chart.Values, float64(n))
	}
	return okOutcome(chart, models.Insight{
		Type: models.InsightML,
		Text: fmt.Sprintf("K-Means identified %d patterns in the numeric data.", len(chart.Labels)),
	}), nil
}

// standardize scales each column to zero mean and unit population variance.
// Zero-variance columns become all zeros and so never affect distances.
func standardize(p *Projection) [][]float64 {
	rows, cols := p.Rows(), p.Cols()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	for j := 0; j < cols; j++ {
		col := p.Column(j)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}
		for i, v := range col {
			out[i][j] = (v - mean) / std
		}
	}
	return out
}

type kmeans struct {
	k         int
	maxIter   int
	rng       *rand.Rand
	centroids [][]float64
}

// fit runs Lloyd iterations from k-means++ seeds and returns the cluster of each row.
func (m *kmeans) fit(X [][]float64) []int {
	n, d := len(X), len(X[0])
	m.initCenters(X)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	for it := 0; it < m.maxIter; it++ {
		changed := false
		for i, x := range X {
			best := m.nearest(x)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([][]float64, m.k)
		counts := make([]int, m.k)
		for k := range sums {
			sums[k] = make([]float64, d)
		}
		for i, x := range X {
			a := assign[i]
			counts[a]++
			for j := range x {
				sums[a][j] += x[j]
			}
		}
		for k := 0; k < m.k; k++ {
			// An empty cluster keeps its previous centroid.
			if counts[k] == 0 {
				continue
			}
			for j := 0; j < d; j++ {
				m.centroids[k][j] = sums[k][j] / float64(counts[k])
			}
		}
	}
	return assign
}

func (m *kmeans) nearest(x []float64) int {
	best, bestDist := 0, math.MaxFloat64
	for k, c := range m.centroids {
		if d := euclidSquared(x, c); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// initCenters picks k-means++ seeds: the first uniformly, the rest with probability
// proportional to the squared distance to the closest chosen seed.
func (m *kmeans) initCenters(X [][]float64) {
	n := len(X)
	chosen := make(map[int]bool, m.k)
	m.centroids = make([][]float64, 0, m.k)
	first := m.rng.Intn(n)
	chosen[first] = true
	m.centroids = append(m.centroids, append([]float64(nil), X[first]...))

	dist := make([]float64, n)
	for len(m.centroids) < m.k {
		total := 0.0
		for i, x := range X {
			dist[i] = euclidSquared(x, m.centroids[0])
			for _, c := range m.centroids[1:] {
				if d := euclidSquared(x, c); d < dist[i] {
					dist[i] = d
				}
			}
			total += dist[i]
		}
		next := -1
		if total > 0 {
			r := m.rng.Float64() * total
			cum, last := 0.0, -1
			for i, d := range dist {
				if d == 0 {
					continue
				}
				cum += d
				last = i
				if cum >= r {
					next = i
					break
				}
			}
			if next < 0 {
				next = last
			}
		}
		if next < 0 {
			// All remaining points coincide with a seed; take the first unused row.
			for i := 0; i < n; i++ {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		chosen[next] = true
		m.centroids = append(m.centroids, append([]float64(nil), X[next]...))
	}
}

func euclidSquared(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
