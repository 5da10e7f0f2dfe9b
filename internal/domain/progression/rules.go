package progression

import (
	"sort"

	"github.com/google/uuid"
)

// ClaimedFromAnswers returns the skills answered at the top confidence tier, sorted by id.
func ClaimedFromAnswers(answers map[uuid.UUID]Confidence) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(answers))
	for id, c := range answers {
		if c == ConfidenceMastered {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

// MissingAnswers lists in-scope skills with no answer, preserving scope order.
func MissingAnswers(scope []uuid.UUID, answers map[uuid.UUID]Confidence) []uuid.UUID {
	var missing []uuid.UUID
	for _, id := range scope {
		if _, ok := answers[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func Claimed(reviews []*SurveySkillReview) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		if r != nil {
			out = append(out, r.SkillID)
		}
	}
	sortIDs(out)
	return out
}

// Awarded is the approved subset of the claimed skills.
func Awarded(reviews []*SurveySkillReview) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		if r != nil && r.Decision == DecisionApprove {
			out = append(out, r.SkillID)
		}
	}
	sortIDs(out)
	return out
}

// StatusFor is reviewed iff no review row is still pending. An empty claim set is reviewed.
func StatusFor(reviews []*SurveySkillReview) SubmissionStatus {
	for _, r := range reviews {
		if r != nil && r.Decision == DecisionPending {
			return SubmissionPending
		}
	}
	return SubmissionReviewed
}

// Covers reports whether a submission's scope includes the given level.
func (s *SurveySubmission) Covers(mapID, levelID uuid.UUID) bool {
	if s == nil {
		return false
	}
	switch s.ScopeType {
	case ScopeMap:
		return s.ScopeID == mapID
	case ScopeLevel:
		return s.ScopeID == levelID
	}
	return false
}

// LevelUnlocked is the single unlock rule: some reviewed submission covers the level,
// either through the whole map or the level itself. Approval count does not matter.
func LevelUnlocked(mapID, levelID uuid.UUID, subs []*SurveySubmission) bool {
	for _, s := range subs {
		if s != nil && s.Status == SubmissionReviewed && s.Covers(mapID, levelID) {
			return true
		}
	}
	return false
}

// AwardedSet unions the awarded skills of every given submission.
func AwardedSet(subs []*SurveySubmission) map[uuid.UUID]bool {
	out := map[uuid.UUID]bool{}
	for _, s := range subs {
		if s == nil {
			continue
		}
		for _, id := range Awarded(s.ReviewedSkills) {
			out[id] = true
		}
	}
	return out
}

// Latest picks the most recent submission for a scope (highest round, then newest).
func Latest(subs []*SurveySubmission, scope Scope) *SurveySubmission {
	var best *SurveySubmission
	for _, s := range subs {
		if s == nil || s.Scope() != scope {
			continue
		}
		if best == nil || s.Round > best.Round || (s.Round == best.Round && s.SubmittedAt.After(best.SubmittedAt)) {
			best = s
		}
	}
	return best
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
