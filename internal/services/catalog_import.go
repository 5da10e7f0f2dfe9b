package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

// CatalogDocument is the YAML seed format for a company's ladders:
//
//	company_id: 8f6c...
//	kpis:
//	  - name: Installs per week
//	    unit: installs
//	maps:
//	  - title: Install
//	    category: install
//	    published: true
//	    levels:
//	      - title: Apprentice
//	        kpi_targets: {Installs per week: 5}
//	        skills:
//	          - title: Site survey
type CatalogDocument struct {
	CompanyID string         `yaml:"company_id"`
	KPIs      []KPIDoc       `yaml:"kpis"`
	Maps      []CareerMapDoc `yaml:"maps"`
}

type KPIDoc struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

type CareerMapDoc struct {
	Title     string     `yaml:"title"`
	Category  string     `yaml:"category"`
	Published bool       `yaml:"published"`
	Levels    []LevelDoc `yaml:"levels"`
}

type LevelDoc struct {
	Title          string             `yaml:"title"`
	SalaryMin      *int64             `yaml:"salary_min"`
	SalaryMax      *int64             `yaml:"salary_max"`
	SalaryCurrency string             `yaml:"salary_currency"`
	KPITargets     map[string]float64 `yaml:"kpi_targets"`
	Skills         []SkillDoc         `yaml:"skills"`
}

type SkillDoc struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Type           string `yaml:"type"`
	Points         int    `yaml:"points"`
	EvidencePolicy string `yaml:"evidence_policy"`
}

type ImportResult struct {
	Maps   int `json:"maps"`
	Levels int `json:"levels"`
	Skills int `json:"skills"`
	KPIs   int `json:"kpis"`
}

// ParseCatalogYAML decodes a catalog document, rejecting unknown keys.
func ParseCatalogYAML(r io.Reader) (*CatalogDocument, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc CatalogDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty catalog document")
		}
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return &doc, nil
}

// Import writes the whole document in one transaction. Levels are numbered in
// document order starting at 1; skills keep document order as position.
func (s *catalogService) Import(ctx context.Context, actor identity.Actor, doc *CatalogDocument) (*ImportResult, error) {
	const op = "Catalog.Import"
	if err := requireReviewer(op, actor); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing document", nil)
	}
	companyID := actor.CompanyID
	if raw := strings.TrimSpace(doc.CompanyID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, "invalid company_id", err)
		}
		companyID = id
	}
	if companyID == uuid.Nil {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, "company_required", "company_id is required", "company_id")
	}
	if !actor.SeesCompany(companyID) {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonNotOwner, "cannot import into another company")
	}

	res := &ImportResult{}
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		*res = ImportResult{}
		kpiByName, err := s.importKPIs(dbc, companyID, doc.KPIs, res)
		if err != nil {
			return err
		}
		for mi, md := range doc.Maps {
			if strings.TrimSpace(md.Title) == "" {
				return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("maps[%d]: title is required", mi), nil)
			}
			m := &types.CareerMap{
				CompanyID: companyID,
				Title:     strings.TrimSpace(md.Title),
				Category:  strings.TrimSpace(md.Category),
				Published: md.Published,
				CreatedBy: actor.ID,
			}
			if _, err := s.maps.Create(dbc, []*types.CareerMap{m}); err != nil {
				return err
			}
			res.Maps++
			for li, ld := range md.Levels {
				targets := make([]career.KPITarget, 0, len(ld.KPITargets))
				for name, target := range ld.KPITargets {
					id, ok := kpiByName[strings.ToLower(strings.TrimSpace(name))]
					if !ok {
						return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("maps[%d].levels[%d]: unknown kpi %q", mi, li, name), nil)
					}
					targets = append(targets, career.KPITarget{KPIID: id, Target: target})
				}
				lvl := &types.CareerLevel{
					MapID:          m.ID,
					LevelNumber:    li + 1,
					Title:          strings.TrimSpace(ld.Title),
					SalaryMin:      ld.SalaryMin,
					SalaryMax:      ld.SalaryMax,
					SalaryCurrency: strings.ToUpper(strings.TrimSpace(ld.SalaryCurrency)),
					KPITargets:     career.EncodeTargets(sortTargets(targets)),
				}
				if lvl.Title == "" {
					lvl.Title = fmt.Sprintf("Level %d", li+1)
				}
				if _, err := s.levels.Create(dbc, []*types.CareerLevel{lvl}); err != nil {
					return err
				}
				res.Levels++
				skills := make([]*types.CareerSkill, 0, len(ld.Skills))
				for si, sd := range ld.Skills {
					st, ok := career.ParseSkillType(sd.Type)
					if !ok || strings.TrimSpace(sd.Title) == "" {
						return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("maps[%d].levels[%d].skills[%d]: invalid skill", mi, li, si), nil)
					}
					skills = append(skills, &types.CareerSkill{
						LevelID:        lvl.ID,
						MapID:          m.ID,
						Title:          strings.TrimSpace(sd.Title),
						Description:    strings.TrimSpace(sd.Description),
						SkillType:      st,
						Points:         sd.Points,
						EvidencePolicy: strings.TrimSpace(sd.EvidencePolicy),
						Position:       si,
					})
				}
				if _, err := s.skills.Create(dbc, skills); err != nil {
					return err
				}
				res.Skills += len(skills)
			}
		}
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("catalog imported", "company", companyID, "maps", res.Maps, "levels", res.Levels, "skills", res.Skills, "kpis", res.KPIs)
	return res, nil
}

// importKPIs reuses existing definitions by case-insensitive name.
func (s *catalogService) importKPIs(dbc dbctx.Context, companyID uuid.UUID, docs []KPIDoc, res *ImportResult) (map[string]uuid.UUID, error) {
	existing, err := s.kpis.ListByCompany(dbc, companyID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uuid.UUID, len(existing)+len(docs))
	for _, k := range existing {
		byName[strings.ToLower(k.Name)] = k.ID
	}
	for _, kd := range docs {
		key := strings.ToLower(strings.TrimSpace(kd.Name))
		if key == "" {
			return nil, fmt.Errorf("kpi name is required")
		}
		if _, ok := byName[key]; ok {
			continue
		}
		k := &types.KPIDefinition{CompanyID: companyID, Name: strings.TrimSpace(kd.Name), Unit: strings.TrimSpace(kd.Unit)}
		if _, err := s.kpis.Create(dbc, []*types.KPIDefinition{k}); err != nil {
			return nil, err
		}
		byName[key] = k.ID
		res.KPIs++
	}
	return byName, nil
}

func sortTargets(in []career.KPITarget) []career.KPITarget {
	sort.Slice(in, func(i, j int) bool { return in[i].KPIID.String() < in[j].KPIID.String() })
	return in
}
