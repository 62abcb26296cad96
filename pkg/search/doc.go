// Package search implements full-text search over the parts catalog using
// the SQLite FTS5 index maintained by the storage layer. Results are ranked
// by FTS5's built-in bm25 ordering and carry highlighted snippets.
package search
