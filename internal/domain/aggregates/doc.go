// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence/transport details and represent the write
// boundaries where survey, review and skill-thread invariants are enforced atomically.
package aggregates
