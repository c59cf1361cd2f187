// Package discovery filters raw venue instruments down to tradable
// head-to-head match contracts.
//
// Candidates pass through an ordered pipeline of stages. Each stage
// either accepts the instrument or rejects it with a short reason
// code; the first rejection wins and later stages do not run. Reason
// codes are stable strings suitable for aggregation into counters.
package discovery
