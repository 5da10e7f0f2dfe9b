package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/http/response"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
	"github.com/yungbote/careerladder-backend/internal/services"
)

type CatalogHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), catalog: catalog}
}

// GET /api/maps?category=
func (h *CatalogHandler) ListMaps(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	maps, err := h.catalog.ListMaps(c.Request.Context(), actor, c.Query("category"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"maps": maps})
}

// GET /api/maps/:id
func (h *CatalogHandler) GetMap(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	mapID, ok := paramID(c, "id", "invalid_map_id")
	if !ok {
		return
	}
	detail, err := h.catalog.GetMap(c.Request.Context(), actor, mapID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"map": detail})
}

// POST /api/maps
// body: { "title": "...", "category": "...", "company_id": "...", "published": false }
func (h *CatalogHandler) CreateMap(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req struct {
		Title     string    `json:"title"`
		Category  string    `json:"category"`
		CompanyID uuid.UUID `json:"company_id"`
		Published bool      `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	m, err := h.catalog.CreateMap(c.Request.Context(), actor, services.CreateMapInput{
		Title:     req.Title,
		Category:  req.Category,
		CompanyID: req.CompanyID,
		Published: req.Published,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"map": m})
}

// PATCH /api/maps/:id/publish
// body: { "published": true }
func (h *CatalogHandler) SetPublished(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	mapID, ok := paramID(c, "id", "invalid_map_id")
	if !ok {
		return
	}
	var req struct {
		Published *bool `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Published == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	m, err := h.catalog.SetPublished(c.Request.Context(), actor, mapID, *req.Published)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"map": m})
}

// POST /api/maps/:id/levels
func (h *CatalogHandler) CreateLevel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	mapID, ok := paramID(c, "id", "invalid_map_id")
	if !ok {
		return
	}
	var req struct {
		LevelNumber    int                `json:"level_number"`
		Title          string             `json:"title"`
		SalaryMin      *int64             `json:"salary_min"`
		SalaryMax      *int64             `json:"salary_max"`
		SalaryCurrency string             `json:"salary_currency"`
		KPITargets     []career.KPITarget `json:"kpi_targets"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	lvl, err := h.catalog.CreateLevel(c.Request.Context(), actor, mapID, services.CreateLevelInput{
		LevelNumber:    req.LevelNumber,
		Title:          req.Title,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		SalaryCurrency: req.SalaryCurrency,
		KPITargets:     req.KPITargets,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"level": lvl})
}

// POST /api/levels/:id/skills
func (h *CatalogHandler) CreateSkill(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	levelID, ok := paramID(c, "id", "invalid_level_id")
	if !ok {
		return
	}
	var req struct {
		Title          string `json:"title"`
		Description    string `json:"description"`
		SkillType      string `json:"skill_type"`
		Points         int    `json:"points"`
		EvidencePolicy string `json:"evidence_policy"`
		Position       *int   `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sk, err := h.catalog.CreateSkill(c.Request.Context(), actor, levelID, services.CreateSkillInput{
		Title:          req.Title,
		Description:    req.Description,
		SkillType:      req.SkillType,
		Points:         req.Points,
		EvidencePolicy: req.EvidencePolicy,
		Position:       req.Position,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"skill": sk})
}

// DELETE /api/skills/:id
func (h *CatalogHandler) DeleteSkill(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	skillID, ok := paramID(c, "id", "invalid_skill_id")
	if !ok {
		return
	}
	closed, err := h.catalog.DeleteSkill(c.Request.Context(), actor, skillID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "threads_closed": closed})
}

// GET /api/kpis
func (h *CatalogHandler) ListKPIs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	kpis, err := h.catalog.ListKPIs(c.Request.Context(), actor)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"kpis": kpis})
}

// POST /api/kpis
func (h *CatalogHandler) CreateKPI(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req struct {
		Name      string    `json:"name"`
		Unit      string    `json:"unit"`
		CompanyID uuid.UUID `json:"company_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	k, err := h.catalog.CreateKPI(c.Request.Context(), actor, services.CreateKPIInput{Name: req.Name, Unit: req.Unit, CompanyID: req.CompanyID})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"kpi": k})
}
