package threads

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
)

func msg(role identity.Role) *ThreadMessage { return &ThreadMessage{SenderRole: role} }

func TestTurnDerivation(t *testing.T) {
	if got := Turn(nil); got != identity.SideStudent {
		t.Fatalf("empty history: want student got %s", got)
	}
	if got := Turn([]*ThreadMessage{msg(identity.RoleStudent)}); got != identity.SideReviewer {
		t.Fatalf("after student: want reviewer got %s", got)
	}
	if got := Turn([]*ThreadMessage{msg(identity.RoleStudent), msg(identity.RoleTeamManager)}); got != identity.SideStudent {
		t.Fatalf("after team manager: want student got %s", got)
	}
	// System messages never flip the turn.
	if got := Turn([]*ThreadMessage{msg(identity.RoleStudent), msg(identity.RoleSystem)}); got != identity.SideReviewer {
		t.Fatalf("system after student: want reviewer got %s", got)
	}
}

func TestAlternates(t *testing.T) {
	ok := []*ThreadMessage{msg(identity.RoleStudent), msg(identity.RoleCoach), msg(identity.RoleSystem), msg(identity.RoleStudent)}
	if !Alternates(ok) {
		t.Fatalf("expected alternating history")
	}
	bad := []*ThreadMessage{msg(identity.RoleStudent), msg(identity.RoleSystem), msg(identity.RoleStudent)}
	if Alternates(bad) {
		t.Fatalf("two student messages around a system message must not alternate")
	}
}

func TestCapabilitiesFor(t *testing.T) {
	studentID := uuid.New()
	student := identity.Actor{ID: studentID, Role: identity.RoleStudent}
	other := identity.Actor{ID: uuid.New(), Role: identity.RoleStudent}
	coach := identity.Actor{ID: uuid.New(), Role: identity.RoleCoach}

	if caps := CapabilitiesFor(student, studentID, nil, nil, true); !caps.CanRequest || caps.CanMessage || caps.CanDecide {
		t.Fatalf("no thread, unlocked: got %+v", caps)
	}
	if caps := CapabilitiesFor(student, studentID, nil, nil, false); caps.CanRequest {
		t.Fatalf("locked skill must not be requestable")
	}
	if caps := CapabilitiesFor(other, studentID, nil, nil, true); caps.CanRequest {
		t.Fatalf("another student must not request")
	}

	th := &SkillThread{Status: StatusPending}
	history := []*ThreadMessage{msg(identity.RoleStudent)}
	if caps := CapabilitiesFor(student, studentID, th, history, true); caps.CanMessage || caps.CanDecide || caps.CanRequest {
		t.Fatalf("student waiting on reviewer: got %+v", caps)
	}
	if caps := CapabilitiesFor(coach, studentID, th, history, true); !caps.CanMessage || !caps.CanDecide {
		t.Fatalf("coach on reviewer turn: got %+v", caps)
	}

	th.Status = StatusRejected
	if caps := CapabilitiesFor(student, studentID, th, history, true); !caps.CanRequest {
		t.Fatalf("rejected thread should be requestable by owner")
	}
	th.Status = StatusApproved
	if caps := CapabilitiesFor(student, studentID, th, history, true); caps != (Capabilities{}) {
		t.Fatalf("approved thread has no affordances, got %+v", caps)
	}
}
