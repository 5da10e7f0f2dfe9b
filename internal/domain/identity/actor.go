package identity

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent     Role = "student"
	RoleCoach       Role = "coach"
	RoleAdmin       Role = "admin"
	RoleCompany     Role = "company"
	RoleTeamManager Role = "team-manager"
	RoleSystem      Role = "system"
)

// Side is the protocol side a role occupies in a review conversation.
type Side string

const (
	SideStudent  Side = "student"
	SideReviewer Side = "reviewer"
	SideSystem   Side = "system"
)

func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case RoleStudent, RoleCoach, RoleAdmin, RoleCompany, RoleTeamManager, RoleSystem:
		return r, true
	case "team_manager", "teammanager":
		return RoleTeamManager, true
	}
	return "", false
}

func (r Role) IsReviewer() bool {
	switch r {
	case RoleCoach, RoleAdmin, RoleCompany, RoleTeamManager:
		return true
	}
	return false
}

func (r Role) Side() Side {
	switch {
	case r == RoleStudent:
		return SideStudent
	case r == RoleSystem:
		return SideSystem
	case r.IsReviewer():
		return SideReviewer
	}
	return ""
}

// Actor is the explicit acting scope threaded through every engine and projector call.
type Actor struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	CompanyID uuid.UUID `json:"company_id"`
}

func (a Actor) IsStudent() bool  { return a.Role == RoleStudent }
func (a Actor) IsReviewer() bool { return a.Role.IsReviewer() }

// CanView reports whether the actor may read state belonging to subjectID.
// Students only see themselves; reviewers see any subject.
func (a Actor) CanView(subjectID uuid.UUID) bool {
	if a.IsReviewer() {
		return true
	}
	return a.IsStudent() && a.ID != uuid.Nil && a.ID == subjectID
}

// SeesCompany is false only when both sides carry a company and they differ.
func (a Actor) SeesCompany(companyID uuid.UUID) bool {
	if a.CompanyID == uuid.Nil || companyID == uuid.Nil {
		return true
	}
	return a.CompanyID == companyID
}
