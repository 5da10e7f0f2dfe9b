package progression

import (
	"strings"

	"github.com/google/uuid"
)

type Confidence string

const (
	ConfidenceNotConfident      Confidence = "not_confident"
	ConfidenceSomewhatConfident Confidence = "somewhat_confident"
	ConfidenceVeryConfident     Confidence = "very_confident"
	ConfidenceMastered          Confidence = "mastered"
)

type Option struct {
	Value Confidence `json:"value"`
	Label string     `json:"label"`
}

// Options is the fixed answer scale, lowest tier first.
func Options() []Option {
	return []Option{
		{Value: ConfidenceNotConfident, Label: "Not confident"},
		{Value: ConfidenceSomewhatConfident, Label: "Somewhat confident"},
		{Value: ConfidenceVeryConfident, Label: "Very confident"},
		{Value: ConfidenceMastered, Label: "Mastered"},
	}
}

func ParseConfidence(raw string) (Confidence, bool) {
	c := Confidence(strings.ToLower(strings.TrimSpace(raw)))
	for _, o := range Options() {
		if o.Value == c {
			return c, true
		}
	}
	return "", false
}

type ScopeType string

const (
	ScopeMap   ScopeType = "map"
	ScopeLevel ScopeType = "level"
)

type Scope struct {
	Type ScopeType `json:"type"`
	ID   uuid.UUID `json:"id"`
}

func MapScope(id uuid.UUID) Scope   { return Scope{Type: ScopeMap, ID: id} }
func LevelScope(id uuid.UUID) Scope { return Scope{Type: ScopeLevel, ID: id} }

func (s Scope) Valid() bool {
	return (s.Type == ScopeMap || s.Type == ScopeLevel) && s.ID != uuid.Nil
}

func (s Scope) String() string { return string(s.Type) + ":" + s.ID.String() }

// Question is one derived template entry; templates are never stored.
type Question struct {
	SkillID     uuid.UUID `json:"skill_id"`
	LevelID     uuid.UUID `json:"level_id"`
	LevelNumber int       `json:"level_number"`
	Title       string    `json:"title"`
	Prompt      string    `json:"prompt"`
	Options     []Option  `json:"options"`
}

type Template struct {
	Scope     Scope      `json:"scope"`
	MapID     uuid.UUID  `json:"map_id"`
	Questions []Question `json:"questions"`
}
