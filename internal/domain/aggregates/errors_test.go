package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestReasonedErrorSurvivesWrapping(t *testing.T) {
	base := Reasoned(CodeValidation, "Survey.Submit", ReasonIncompleteSurvey, "missing answers", "a", "b")
	wrapped := fmt.Errorf("outer: %w", base)
	if !IsCode(wrapped, CodeValidation) {
		t.Fatalf("IsCode: expected validation")
	}
	if !IsReason(wrapped, ReasonIncompleteSurvey) {
		t.Fatalf("IsReason: expected incomplete_survey")
	}
	agg, ok := As(wrapped)
	if !ok || len(agg.Fields) != 2 {
		t.Fatalf("As: fields not preserved: %+v", agg)
	}
	if got := base.Error(); got != "Survey.Submit: missing answers (validation/incomplete_survey)" {
		t.Fatalf("Error(): got %q", got)
	}
}

func TestWrapAndCodeOf(t *testing.T) {
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
	cause := errors.New("boom")
	err := Wrap(CodeRetryable, "op", cause)
	if CodeOf(err) != CodeRetryable || !errors.Is(err, cause) {
		t.Fatalf("Wrap: lost code or cause: %v", err)
	}
	if CodeOf(cause) != "" {
		t.Fatalf("CodeOf plain error should be empty")
	}
}

func TestContractOwnership(t *testing.T) {
	for _, c := range []Contract{SurveyAggregateContract, SkillThreadAggregateContract} {
		if !c.RequiresAggregateOwnedTx() {
			t.Fatalf("%s must own its write transactions", c.Name)
		}
	}
}
