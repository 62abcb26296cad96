// Package storage defines the storage contract and backend configuration
// for the parts catalog. The SQLite implementation lives in the sqlite
// subpackage; this package holds only interfaces and shared config so
// consumers do not depend on a concrete engine.
package storage
