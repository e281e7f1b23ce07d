// Package model defines the core data structures used throughout urlup.
//
// This package contains the following main types:
//   - Occurrence: A URL found at a specific file and line
//   - DistinctURL: A unique URL with its first location and occurrence count
//   - Outcome: The terminal result of validating one distinct URL
//   - Report: The aggregated result of a complete run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (discovery, validator, aggregate, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// cache storage.
package model
