// Package store defines the resume persistence contract, its errors and the
// helpers shared by the SQL implementations.
package store
