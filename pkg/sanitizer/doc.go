// Package sanitizer normalizes free text before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input degrades to an empty string or slice
// rather than an error.
//
// Normalization includes:
//   - Identifiers: trim surrounding whitespace
//   - Single-line text: collapse runs of whitespace, trim
//   - Notes: normalize each line, keep paragraph breaks, drop control characters
//   - Slices: drop empty values and case-insensitive duplicates
package sanitizer
