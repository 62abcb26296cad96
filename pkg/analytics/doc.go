// Package analytics computes aggregate views over the parts catalog:
// per-catalog coverage, category distribution, association totals, and the
// dashboard counters. The Aggregator pushes precomputed stats into Redis on
// a schedule so the hot path can serve them without touching SQLite.
package analytics
