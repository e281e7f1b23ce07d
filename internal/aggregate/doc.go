// Package aggregate derives the final report of a run from the
// validation outcomes and the discovery results.
//
// Design decision: The report is a pure derivation over completed data
// rather than counters updated while validation runs, because:
//  1. The arithmetic is testable without a network or a clock.
//  2. Issue ordering comes from discovery (first-seen file and line),
//     so it cannot depend on the order in which checks finished.
//  3. Interrupted runs reuse the same path: whatever outcomes exist are
//     aggregated and the report is marked partial.
package aggregate
