// Package utils provides conversion helpers for loosely typed document values.
// Index documents are decoded from JSON into map[string]any, so numbers arrive
// as float64 and arrays as []any; these helpers turn them into the concrete
// types the reconciliation code works with.
package utils
