package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/crossval/metadata"
	"github.com/hupe1980/crossval/record"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)
	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}
	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gaussianLocked(num, dimensions, 1)
}

func (r *RNG) gaussianLocked(num, dimensions int, spread float64) [][]float32 {
	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)
	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64() * spread)
		}
		vectors[i] = vec
	}
	return vectors
}

// ClusteredVectors generates vectors around one unit-length centroid per
// cluster. Vector i belongs to cluster clusters[i].
func (r *RNG) ClusteredVectors(dim int, clusters []int, spread float32) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range clusters {
		n = max(n, c+1)
	}
	centroids := r.gaussianLocked(n, dim, 1)
	for _, c := range centroids {
		normalize(c)
	}

	vectors := r.gaussianLocked(len(clusters), dim, float64(spread))
	for i, c := range clusters {
		for j := range vectors[i] {
			vectors[i][j] += centroids[c][j]
		}
	}
	return vectors
}

func normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= inv
	}
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, s=1.5 gives a heavy tail.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// ZipfBuckets generates n bucket assignments with Zipfian distribution.
func (r *RNG) ZipfBuckets(n, bucketCount int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	buckets := make([]int, n)
	for i := range n {
		buckets[i] = r.zipfLocked(bucketCount, s)
	}
	return buckets
}

// PartitionedDataset generates n Gaussian records assigned round robin to
// partitions 0..k-1. Record i has subject "s<i>".
func (r *RNG) PartitionedDataset(n, dim, k int) record.Dataset {
	parts := make([]int, n)
	for i := range parts {
		parts[i] = i % max(k, 1)
	}
	return r.dataset(dim, parts)
}

// SkewedDataset generates n records whose partitions follow a Zipfian
// distribution over k partitions. Partition k-1 always holds at least one
// record so the dataset has exactly k partitions.
func (r *RNG) SkewedDataset(n, dim, k int, s float64) record.Dataset {
	parts := r.ZipfBuckets(n, k, s)
	if n > 0 && k > 0 {
		parts[n-1] = k - 1
	}
	return r.dataset(dim, parts)
}

func (r *RNG) dataset(dim int, parts []int) record.Dataset {
	vecs := r.ClusteredVectors(dim, parts, 0.2)
	ds := make(record.Dataset, len(parts))
	for i, p := range parts {
		ds[i] = record.New(vecs[i]).
			Subject(fmt.Sprintf("s%d", i)).
			Partition(p).
			Build()
	}
	return ds
}

// SubjectDataset generates perSubject records for each of subjects
// identities, interleaved so records of one subject are not adjacent.
// Records carry no partition attribute.
func (r *RNG) SubjectDataset(subjects, perSubject, dim int) record.Dataset {
	n := subjects * perSubject
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i % max(subjects, 1)
	}
	vecs := r.ClusteredVectors(dim, ids, 0.1)

	ds := make(record.Dataset, n)
	for i, id := range ids {
		ds[i] = record.New(vecs[i]).
			Subject(fmt.Sprintf("subject-%03d", id)).
			With("Age", metadata.Int(int64(20+id%50))).
			Build()
	}
	return ds
}

// Mean returns the per-dimension mean of the dataset's vectors.
func Mean(ds record.Dataset) []float32 {
	dim := ds.Dimension()
	if dim == 0 {
		return nil
	}
	sum := make([]float64, dim)
	for _, rec := range ds {
		for j, v := range rec.Vector {
			sum[j] += float64(v)
		}
	}
	out := make([]float32, dim)
	for j := range sum {
		out[j] = float32(sum[j] / float64(len(ds)))
	}
	return out
}
