// Package validator checks distinct URLs over HTTP and classifies each
// result. It is the core of urlup: a bounded worker pool shares one
// pooled HTTP client and one global rate limiter, retries transient
// failures with exponential backoff, and produces exactly one terminal
// outcome per URL.
//
// Design decision: We validate a fully materialized set of distinct
// URLs rather than streaming occurrences through the pool because:
//  1. It guarantees each URL is requested exactly once per run
//  2. Batch sizes can be derived from the total up front
//  3. Interruption cleanly yields outcomes for completed URLs only
//
// Excluded and allowlisted URLs are settled before dispatch. They never
// consume a rate-limiter token and never reach the network.
package validator
