// Package optimize rewrites compiled programs through an ordered pipeline
// of passes. Passes never edit their input; each returns a new program.
package optimize
