package aggregates

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

func TestExecuteWriteReportsOutcomeToHooks(t *testing.T) {
	cases := []struct {
		name      string
		op        string
		fnErr     error
		code      domainagg.ErrorCode
		status    string
		conflicts int
		retries   int
	}{
		{name: "success", op: "survey.submit", status: "success"},
		{name: "invariant", op: "survey.decide", fnErr: InvariantError("awarded skill was never claimed"), code: domainagg.CodeInvariantViolation, status: string(domainagg.CodeInvariantViolation)},
		{name: "stale version", op: "survey.decide", fnErr: ConflictError("submission version moved"), code: domainagg.CodeConflict, status: string(domainagg.CodeConflict), conflicts: 1},
		{name: "lock timeout", op: "skill_thread.message", fnErr: RetryableError("lock not available"), code: domainagg.CodeRetryable, status: string(domainagg.CodeRetryable), retries: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, tc.op, func(_ dbctx.Context) error {
				return tc.fnErr
			})
			if tc.fnErr == nil {
				if err != nil {
					t.Fatalf("executeWrite: %v", err)
				}
			} else if !domainagg.IsCode(err, tc.code) {
				t.Fatalf("code: want=%s got=%v", tc.code, err)
			}
			if len(hooks.Operations) != 1 || hooks.Operations[0].Name != tc.op || hooks.Operations[0].Status != tc.status {
				t.Fatalf("operations: want %s/%s got=%+v", tc.op, tc.status, hooks.Operations)
			}
			if len(hooks.Conflicts) != tc.conflicts {
				t.Fatalf("conflicts: want=%d got=%+v", tc.conflicts, hooks.Conflicts)
			}
			if len(hooks.Retries) != tc.retries {
				t.Fatalf("retries: want=%d got=%+v", tc.retries, hooks.Retries)
			}
		})
	}
}

func TestExecuteWriteKeepsReasonedErrors(t *testing.T) {
	hooks := &spyHooks{}
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "aggregate.test.reason", func(_ dbctx.Context) error {
		return domainagg.Reasoned(domainagg.CodeConflict, "aggregate.test.reason", domainagg.ReasonSubmissionPending, "pending")
	})
	if !domainagg.IsReason(err, domainagg.ReasonSubmissionPending) {
		t.Fatalf("reason lost: %v", err)
	}
	if len(hooks.Conflicts) != 1 {
		t.Fatalf("reasoned conflicts still count as conflicts: %+v", hooks.Conflicts)
	}
}

func TestBaseDepsAtDefaultsToClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	deps := BaseDeps{Now: func() time.Time { return fixed }}
	if got := deps.at(time.Time{}); !got.Equal(fixed) {
		t.Fatalf("at(zero): got=%v", got)
	}
	in := fixed.Add(time.Hour).In(time.FixedZone("x", 3600))
	if got := deps.at(in); got.Location() != time.UTC || !got.Equal(in) {
		t.Fatalf("at(t): should normalize to UTC, got=%v", got)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	closed := domainagg.Reasoned(domainagg.CodeConflict, "skill_thread.review", domainagg.ReasonThreadNotOpen, "thread closed")
	if got := aggregateErrorStatus(closed); got != string(domainagg.CodeConflict) {
		t.Fatalf("reasoned status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
