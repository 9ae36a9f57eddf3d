// Package output turns coverage results into deterministic report output.
//
// # Rows
//
// Rows flattens a bundle counter into one row per bundle, package, class and
// method, in tree order. When a previous bundle is supplied each row carries
// the trend arrow against the row with the same kind and name.
//
// # JSON Encoding Rules
//
// DeterministicEncode produces byte-identical output for equal values:
//
//  1. Stable key ordering: object keys are sorted alphabetically
//  2. Float formatting: rounded to at most 6 decimal places
//  3. Null handling: nil fields are omitted entirely
//  4. json.Marshaler and encoding.TextMarshaler values encode themselves
package output
