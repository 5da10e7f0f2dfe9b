package threads

import (
	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
)

// Turn derives whose turn it is from the message history. The last non-system
// message decides: a student message hands the turn to the reviewer side and
// vice versa. With no such message the student opens the conversation.
func Turn(msgs []*ThreadMessage) identity.Side {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		switch m.SenderRole.Side() {
		case identity.SideStudent:
			return identity.SideReviewer
		case identity.SideReviewer:
			return identity.SideStudent
		}
	}
	return identity.SideStudent
}

// Alternates checks that no two consecutive non-system messages share a side.
func Alternates(msgs []*ThreadMessage) bool {
	var prev identity.Side
	for _, m := range msgs {
		if m == nil {
			continue
		}
		side := m.SenderRole.Side()
		if side == identity.SideSystem || side == "" {
			continue
		}
		if side == prev {
			return false
		}
		prev = side
	}
	return true
}

type Capabilities struct {
	CanRequest bool `json:"can_request"`
	CanMessage bool `json:"can_message"`
	CanDecide  bool `json:"can_decide"`
}

// CapabilitiesFor gates the single thread surface by role, ownership, status and turn.
// th may be nil when no conversation exists yet.
func CapabilitiesFor(actor identity.Actor, studentID uuid.UUID, th *SkillThread, msgs []*ThreadMessage, unlocked bool) Capabilities {
	var caps Capabilities
	owner := actor.IsStudent() && actor.ID == studentID
	if th == nil {
		caps.CanRequest = owner && unlocked
		return caps
	}
	switch th.Status {
	case StatusPending:
		turn := Turn(msgs)
		caps.CanMessage = (owner && turn == identity.SideStudent) || (actor.IsReviewer() && turn == identity.SideReviewer)
		caps.CanDecide = actor.IsReviewer() && turn == identity.SideReviewer
	case StatusRejected, StatusClosed:
		caps.CanRequest = owner && unlocked
	}
	return caps
}
