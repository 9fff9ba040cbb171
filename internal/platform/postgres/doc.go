// Package postgres implements the resume store on PostgreSQL through the
// pgx stdlib driver, with goose migrations embedded in the binary.
package postgres
