// Package sqlite provides a SQLite implementation of the resume store for
// local runs and tests. It uses the pure-Go modernc.org/sqlite driver, so no
// cgo toolchain is needed.
package sqlite
