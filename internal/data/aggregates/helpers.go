package aggregates

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/data/repos"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

func sortStrings(in []string) []string {
	sort.Strings(in)
	return in
}

// requireMapCompany rejects actors acting on a map owned by another company.
func requireMapCompany(dbc dbctx.Context, maps repos.CareerMapRepo, op string, actor identity.Actor, mapID uuid.UUID) error {
	if actor.CompanyID == uuid.Nil {
		return nil
	}
	m, err := maps.GetByID(dbc, mapID)
	if err != nil {
		return err
	}
	if m == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("career map not found: %s", mapID), nil)
	}
	if !actor.SeesCompany(m.CompanyID) {
		return domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonOtherCompany, "career map belongs to another company")
	}
	return nil
}
