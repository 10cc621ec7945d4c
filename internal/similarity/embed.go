package similarity

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var errDecomposition = errors.New("principal component decomposition failed")

// MinMaxScale maps every feature column to [0,1]. A constant column maps
// to 0.
func MinMaxScale(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	d := len(x[0])
	lo := make([]float64, d)
	hi := make([]float64, d)
	for j := 0; j < d; j++ {
		lo[j], hi[j] = math.Inf(1), math.Inf(-1)
	}
	for _, row := range x {
		for j, v := range row {
			lo[j] = math.Min(lo[j], v)
			hi[j] = math.Max(hi[j], v)
		}
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, d)
		for j, v := range row {
			if span := hi[j] - lo[j]; span > 0 {
				scaled[j] = (v - lo[j]) / span
			}
		}
		out[i] = scaled
	}
	return out
}

// Project2D centers x and projects it onto its first two principal
// components. When fewer than two components exist the missing axis is 0.
func Project2D(x [][]float64) ([][2]float64, error) {
	n := len(x)
	if n == 0 {
		return nil, nil
	}
	d := len(x[0])
	data := make([]float64, 0, n*d)
	for _, row := range x {
		data = append(data, row...)
	}
	m := mat.NewDense(n, d, data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return nil, errDecomposition
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, comps := vecs.Dims()
	if comps > 2 {
		comps = 2
	}

	means := make([]float64, d)
	for j := 0; j < d; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, m), nil)
	}

	out := make([][2]float64, n)
	for i, row := range x {
		for c := 0; c < comps; c++ {
			var s float64
			for j, v := range row {
				s += (v - means[j]) * vecs.At(j, c)
			}
			out[i][c] = s
		}
	}
	return out, nil
}

// KMeans clusters points into k groups with k-means++ seeding and Lloyd
// iterations, keeping the lowest-inertia run out of restarts. rng drives
// every random choice, so a fixed seed gives fixed labels.
func KMeans(points [][2]float64, k int, rng *rand.Rand, restarts, maxIter int) ([]int, float64) {
	n := len(points)
	if n == 0 || k <= 0 {
		return make([]int, n), 0
	}
	if k > n {
		k = n
	}
	if restarts < 1 {
		restarts = 1
	}
	var best []int
	bestInertia := math.Inf(1)
	for r := 0; r < restarts; r++ {
		labels, inertia := lloyd(points, seedCentroids(points, k, rng), maxIter)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return best, bestInertia
}

// seedCentroids picks k starting centroids by k-means++: each next centroid
// is drawn with probability proportional to its squared distance from the
// nearest centroid chosen so far.
func seedCentroids(points [][2]float64, k int, rng *rand.Rand) [][2]float64 {
	n := len(points)
	centroids := make([][2]float64, 0, k)
	centroids = append(centroids, points[rng.Intn(n)])

	d2 := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			d2[i] = nearest(p, centroids).dist
			total += d2[i]
		}
		if total == 0 {
			// every point sits on a centroid already
			centroids = append(centroids, points[rng.Intn(n)])
			continue
		}
		target := rng.Float64() * total
		pick := n - 1
		for i, w := range d2 {
			target -= w
			if target <= 0 && w > 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, points[pick])
	}
	return centroids
}

func lloyd(points [][2]float64, centroids [][2]float64, maxIter int) ([]int, float64) {
	n, k := len(points), len(centroids)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			if c := nearest(p, centroids).idx; c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([][2]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := labels[i]
			sums[c][0] += p[0]
			sums[c][1] += p[1]
			counts[c]++
		}
		for c := range centroids {
			// an emptied cluster keeps its previous centroid
			if counts[c] > 0 {
				centroids[c] = [2]float64{sums[c][0] / float64(counts[c]), sums[c][1] / float64(counts[c])}
			}
		}
	}
	var inertia float64
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return labels, inertia
}

type hit struct {
	idx  int
	dist float64
}

// nearest returns the closest centroid by squared distance, lowest index on
// ties.
func nearest(p [2]float64, centroids [][2]float64) hit {
	best := hit{idx: 0, dist: math.Inf(1)}
	for c, ctr := range centroids {
		if d := sqDist(p, ctr); d < best.dist {
			best = hit{c, d}
		}
	}
	return best
}

func sqDist(a, b [2]float64) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return dx*dx + dy*dy
}
