// Package sqlite implements the storage.Store contract on SQLite with an
// FTS5 full-text index over the parts table. The index is maintained by
// triggers, so it is updated in the same transaction as the row change and
// never lags the base table.
package sqlite
