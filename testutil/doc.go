// Package testutil provides helpers for generating synthetic cross-validation
// datasets in tests and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Vectors
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.GaussianVectors(100, 16)
//
// # Datasets
//
//	ds := rng.PartitionedDataset(1000, 16, 5)   // partitions 0..4, round robin
//	ds := rng.SkewedDataset(1000, 16, 5, 1.5)   // Zipfian partition sizes
//	ds := rng.SubjectDataset(50, 4, 16)         // 50 subjects, 4 records each
//
// # Ground Truth
//
//	mean := testutil.Mean(ds)
package testutil
