// Package progression holds the table repos for survey submissions, their per-skill
// reviews, the decision history and permanent skill acquisitions.
package progression
