// Package testutil provides testing utilities for embark.
//
// This package is intended for use in tests and benchmarks only. It provides
// a thread-safe seeded random source, canonical experiment configurations
// and small synthetic datasets that train in milliseconds.
//
// # Canonical Configuration
//
//	cfg := testutil.Config()                 // TransE on a synthetic dataset
//	cfg := testutil.ConfigWith(func(c *config.ExperimentConfig) {
//		c.Pipeline.Model.Name = "DistMult"
//	})
//
// # Synthetic Data
//
//	ds := testutil.Dataset(t, 64)            // 64 training triples
package testutil
