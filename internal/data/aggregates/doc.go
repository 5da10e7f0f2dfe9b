// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations in this package compose table-level repos from internal/data/repos
// and own transaction boundaries for the survey, review and skill-thread write paths.
// Every invariant check runs inside the same transaction as the write it guards.
package aggregates
