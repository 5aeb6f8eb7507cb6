/*
handlers.go - HTTP API handlers for the estimating system

PURPOSE:
  Exposes the cost engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Projects:
    GET/POST     /api/projects
    GET/PUT/DELETE /api/projects/{id}
    GET          /api/projects/{id}/totals
    GET/POST     /api/projects/{id}/estimates
    GET/POST     /api/projects/{id}/motors

  Estimates:
    GET/DELETE   /api/estimates/{id}
    GET          /api/estimates/{id}/totals
    GET/POST     /api/estimates/{id}/assemblies
    GET/POST     /api/estimates/{id}/components
    GET/POST     /api/estimates/{id}/revisions

  Assemblies:
    GET          /api/assemblies/{id}
    GET          /api/assemblies/{id}/totals
    GET/POST     /api/assemblies/{id}/parts
    POST         /api/assemblies/{id}/refresh-template
    POST         /api/assemblies/{id}/change-version
    PUT          /api/assembly-parts/{id}/quantity

  Catalog:
    GET/POST     /api/parts
    GET          /api/parts/lookup?identifier=...
    GET          /api/parts/{id}
    PUT          /api/parts/{id}/price
    GET          /api/parts/{id}/price-history

  Standard assemblies:
    POST         /api/standard-assemblies
    GET          /api/standard-assemblies/compare?a=...&b=...
    GET          /api/standard-assemblies/{id}
    GET          /api/standard-assemblies/{id}/components
    GET/POST     /api/standard-assemblies/{id}/versions
    GET          /api/standard-assemblies/{id}/audit
    POST         /api/standard-assemblies/{id}/apply

  Motors:
    GET/PUT      /api/motors/{id}
    GET          /api/motors/{id}/revisions
    POST         /api/motors/{id}/revert
    GET          /api/motors/{id}/compare?a=...&b=...
    GET          /api/motors/{id}/amps

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Concurrent-modification conflict (retryable)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/motor"
	"github.com/voltworks/estimator/template"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Repository is the CRUD surface the handlers use directly, beyond what
// the domain services cover. Both store implementations satisfy it.
type Repository interface {
	SaveProject(ctx context.Context, p costing.Project) error
	GetProject(ctx context.Context, id string) (*costing.Project, error)
	ListProjects(ctx context.Context) ([]costing.Project, error)
	DeleteProject(ctx context.Context, id string) error

	SaveEstimate(ctx context.Context, e costing.Estimate) error
	GetEstimate(ctx context.Context, id string) (*costing.Estimate, error)
	ListEstimates(ctx context.Context, projectID string) ([]costing.Estimate, error)
	DeleteEstimate(ctx context.Context, id string) error
	UpdateEstimateRevision(ctx context.Context, estimateID string, revisionNumber int, at time.Time) error
	AppendEstimateRevision(ctx context.Context, rev costing.EstimateRevision) error
	ListEstimateRevisions(ctx context.Context, estimateID string) ([]costing.EstimateRevision, error)

	CreateAssembly(ctx context.Context, a costing.Assembly) error
	GetAssembly(ctx context.Context, id string) (*costing.Assembly, error)
	ListAssemblies(ctx context.Context, estimateID string) ([]costing.Assembly, error)
	NextAssemblySortOrder(ctx context.Context, estimateID string) (int, error)
	AddAssemblyPart(ctx context.Context, ap costing.AssemblyPart) error
	ListAssemblyParts(ctx context.Context, assemblyID string) ([]costing.AssemblyPart, error)
	UpdateAssemblyPartQuantity(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error

	AddComponent(ctx context.Context, c costing.Component) error
	ListComponents(ctx context.Context, estimateID string) ([]costing.Component, error)

	SavePart(ctx context.Context, p catalog.Part) error
	GetPart(ctx context.Context, id string) (*catalog.Part, error)
	FindPartByIdentifier(ctx context.Context, identifier string) (*catalog.Part, error)
	ListParts(ctx context.Context) ([]catalog.Part, error)
	GetOrCreatePartCategory(ctx context.Context, name string) (*catalog.PartCategory, error)

	SaveStandardAssembly(ctx context.Context, sa template.StandardAssembly) error
	AddTemplateComponent(ctx context.Context, c template.Component) error
	ListVersionRecords(ctx context.Context, standardAssemblyID string) ([]template.VersionRecord, error)
	ComponentDetails(ctx context.Context, standardAssemblyID string) ([]template.ComponentDetail, error)

	SaveMotor(ctx context.Context, m motor.Motor) error
	GetMotor(ctx context.Context, id string) (*motor.Motor, error)
	ListMotors(ctx context.Context, projectID string) ([]motor.Motor, error)
}

// Backend bundles everything the API needs from a store implementation.
type Backend interface {
	Repository
	Costing() costing.Store
	Catalog() catalog.TxStore
	Templates() template.TxStore
	Motors() motor.TxStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo       Repository
	Aggregator *costing.Aggregator
	Revisions  *costing.RevisionLog
	Prices     *catalog.Tracker
	Templates  *template.Versioner
	Motors     *motor.Tracker

	Logger  *zap.Logger
	Metrics *Metrics
}

// NewHandler wires the domain services over the given backend.
func NewHandler(store Backend, logger *zap.Logger, metrics *Metrics) *Handler {
	return &Handler{
		Repo:       store,
		Aggregator: costing.NewAggregator(store.Costing()),
		Revisions:  costing.NewRevisionLog(store),
		Prices:     catalog.NewTracker(store.Catalog()),
		Templates:  template.NewVersioner(store.Templates()),
		Motors:     motor.NewTracker(store.Motors()),
		Logger:     logger,
		Metrics:    metrics,
	}
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Repo.ListProjects(r.Context())
	if err != nil {
		h.writeDomainError(w, err, "failed to list projects")
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toProjectDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	now := time.Now().UTC()
	p := costing.Project{
		ID: uuid.NewString(), Name: req.Name, Client: req.Client,
		Description: req.Description, Status: req.Status, Revision: req.Revision,
		Remarks: req.Remarks, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := h.Repo.SaveProject(r.Context(), p); err != nil {
		h.writeDomainError(w, err, "failed to create project")
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found", nil)
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	p.Client = req.Client
	p.Description = req.Description
	p.Status = req.Status
	p.Revision = req.Revision
	p.Remarks = req.Remarks
	p.UpdatedAt = time.Now().UTC()

	if err := h.Repo.SaveProject(r.Context(), *p); err != nil {
		h.writeDomainError(w, err, "failed to update project")
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err, "failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProjectTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Aggregator.ProjectTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to compute project totals")
		return
	}
	writeJSON(w, http.StatusOK, ProjectTotalsDTO{
		ProjectID:       totals.ProjectID,
		MaterialTotal:   totals.MaterialTotal.StringFixed(2),
		LaborCost:       totals.LaborCost.StringFixed(2),
		GrandTotal:      totals.GrandTotal.StringFixed(2),
		EstimateCount:   totals.EstimateCount,
		OptionalSkipped: totals.OptionalSkipped,
	})
}

// =============================================================================
// ESTIMATE HANDLERS
// =============================================================================

func (h *Handler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	estimates, err := h.Repo.ListEstimates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to list estimates")
		return
	}
	dtos := make([]EstimateDTO, 0, len(estimates))
	for _, e := range estimates {
		dtos = append(dtos, toEstimateDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	p, err := h.Repo.GetProject(r.Context(), projectID)
	if err != nil {
		h.writeDomainError(w, err, "failed to load project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found", nil)
		return
	}

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	now := time.Now().UTC()
	rates := costing.DefaultRates(now)
	if req.Rates != nil {
		parsed, err := parseRates(*req.Rates, now)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid rates", err)
			return
		}
		rates = parsed
	}
	hours := costing.LaborHours{}
	if req.Hours != nil {
		parsed, err := parseHours(*req.Hours)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hours", err)
			return
		}
		hours = parsed
	}

	e := costing.Estimate{
		ID: uuid.NewString(), ProjectID: projectID, Number: req.Number,
		Name: req.Name, Description: req.Description, SortOrder: req.SortOrder,
		Optional: req.Optional, Rates: rates, Hours: hours,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := h.Repo.SaveEstimate(r.Context(), e); err != nil {
		h.writeDomainError(w, err, "failed to create estimate")
		return
	}
	writeJSON(w, http.StatusCreated, toEstimateDTO(e))
}

func (h *Handler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	e, err := h.Repo.GetEstimate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load estimate")
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "estimate not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEstimateDTO(*e))
}

func (h *Handler) DeleteEstimate(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteEstimate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err, "failed to delete estimate")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetEstimateTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Aggregator.EstimateTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to compute estimate totals")
		return
	}
	writeJSON(w, http.StatusOK, EstimateTotalsDTO{
		EstimateID:    totals.EstimateID,
		MaterialTotal: totals.MaterialTotal.StringFixed(2),
		LaborHours:    toHoursDTO(totals.LaborHours),
		LaborCost:     totals.LaborCost.StringFixed(2),
		GrandTotal:    totals.GrandTotal.StringFixed(2),
	})
}

func (h *Handler) ListEstimateRevisions(w http.ResponseWriter, r *http.Request) {
	revisions, err := h.Revisions.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to list revisions")
		return
	}
	dtos := make([]EstimateRevisionDTO, 0, len(revisions))
	for _, rev := range revisions {
		dtos = append(dtos, EstimateRevisionDTO{
			ID: rev.ID, EstimateID: rev.EstimateID, RevisionNumber: rev.RevisionNumber,
			ChangesSummary: rev.ChangesSummary, DetailedChanges: rev.DetailedChanges,
			CreatedBy: rev.CreatedBy, CreatedAt: fmtTime(rev.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEstimateRevision(w http.ResponseWriter, r *http.Request) {
	var req CreateRevisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rev, err := h.Revisions.CreateRevision(r.Context(), chi.URLParam(r, "id"),
		req.ChangesSummary, req.DetailedChanges, req.CreatedBy)
	if err != nil {
		h.writeDomainError(w, err, "failed to create revision")
		return
	}
	writeJSON(w, http.StatusCreated, EstimateRevisionDTO{
		ID: rev.ID, EstimateID: rev.EstimateID, RevisionNumber: rev.RevisionNumber,
		ChangesSummary: rev.ChangesSummary, DetailedChanges: rev.DetailedChanges,
		CreatedBy: rev.CreatedBy, CreatedAt: fmtTime(rev.CreatedAt),
	})
}

// =============================================================================
// ASSEMBLY HANDLERS
// =============================================================================

func (h *Handler) ListAssemblies(w http.ResponseWriter, r *http.Request) {
	assemblies, err := h.Repo.ListAssemblies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to list assemblies")
		return
	}
	dtos := make([]AssemblyDTO, 0, len(assemblies))
	for _, a := range assemblies {
		dtos = append(dtos, toAssemblyDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAssembly(w http.ResponseWriter, r *http.Request) {
	estimateID := chi.URLParam(r, "id")
	est, err := h.Repo.GetEstimate(r.Context(), estimateID)
	if err != nil {
		h.writeDomainError(w, err, "failed to load estimate")
		return
	}
	if est == nil {
		writeError(w, http.StatusNotFound, "estimate not found", nil)
		return
	}

	var req AssemblyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	hours := costing.LaborHours{}
	if req.Hours != nil {
		parsed, err := parseHours(*req.Hours)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hours", err)
			return
		}
		hours = parsed
	}

	sortOrder, err := h.Repo.NextAssemblySortOrder(r.Context(), estimateID)
	if err != nil {
		h.writeDomainError(w, err, "failed to create assembly")
		return
	}

	a := costing.Assembly{
		ID: uuid.NewString(), EstimateID: estimateID, Name: req.Name,
		Description: req.Description, SortOrder: sortOrder,
		Quantity: decimal.NewFromInt(1), Hours: hours, CreatedAt: time.Now().UTC(),
	}
	if err := h.Repo.CreateAssembly(r.Context(), a); err != nil {
		h.writeDomainError(w, err, "failed to create assembly")
		return
	}
	writeJSON(w, http.StatusCreated, toAssemblyDTO(a))
}

func (h *Handler) GetAssembly(w http.ResponseWriter, r *http.Request) {
	a, err := h.Repo.GetAssembly(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load assembly")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "assembly not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAssemblyDTO(*a))
}

func (h *Handler) GetAssemblyTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Aggregator.AssemblyTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to compute assembly totals")
		return
	}
	lines := make([]LineTotalDTO, 0, len(totals.Lines))
	for _, l := range totals.Lines {
		lines = append(lines, LineTotalDTO{
			AssemblyPartID: l.AssemblyPartID, PartID: l.PartID,
			Quantity: l.Quantity.String(), UnitPrice: l.UnitPrice.StringFixed(2),
			Total: l.Total.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, AssemblyTotalsDTO{
		AssemblyID:    totals.AssemblyID,
		MaterialTotal: totals.MaterialTotal.StringFixed(2),
		LaborCost:     totals.LaborCost.StringFixed(2),
		Lines:         lines,
	})
}

func (h *Handler) ListAssemblyParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Repo.ListAssemblyParts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to list assembly parts")
		return
	}
	dtos := make([]AssemblyPartDTO, 0, len(parts))
	for _, ap := range parts {
		dtos = append(dtos, toAssemblyPartDTO(ap))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddAssemblyPart(w http.ResponseWriter, r *http.Request) {
	assemblyID := chi.URLParam(r, "id")
	a, err := h.Repo.GetAssembly(r.Context(), assemblyID)
	if err != nil {
		h.writeDomainError(w, err, "failed to load assembly")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "assembly not found", nil)
		return
	}

	var req AddAssemblyPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity", err)
		return
	}
	if err := costing.ValidateQuantity(qty); err != nil {
		h.writeDomainError(w, err, "invalid quantity")
		return
	}
	part, err := h.Repo.GetPart(r.Context(), req.PartID)
	if err != nil {
		h.writeDomainError(w, err, "failed to load part")
		return
	}
	if part == nil {
		writeError(w, http.StatusNotFound, "part not found", nil)
		return
	}

	now := time.Now().UTC()
	ap := costing.AssemblyPart{
		ID: uuid.NewString(), AssemblyID: assemblyID, PartID: req.PartID,
		Quantity: qty, UnitOfMeasure: req.UnitOfMeasure, Notes: req.Notes,
		SortOrder: req.SortOrder, CreatedAt: now, UpdatedAt: now,
	}
	if err := h.Repo.AddAssemblyPart(r.Context(), ap); err != nil {
		h.writeDomainError(w, err, "failed to add assembly part")
		return
	}
	writeJSON(w, http.StatusCreated, toAssemblyPartDTO(ap))
}

func (h *Handler) UpdateAssemblyPartQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity", err)
		return
	}
	if err := costing.ValidateQuantity(qty); err != nil {
		h.writeDomainError(w, err, "invalid quantity")
		return
	}
	if err := h.Repo.UpdateAssemblyPartQuantity(r.Context(), chi.URLParam(r, "id"), qty, time.Now().UTC()); err != nil {
		h.writeDomainError(w, err, "failed to update quantity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RefreshAssemblyTemplate(w http.ResponseWriter, r *http.Request) {
	a, err := h.Templates.RefreshToActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to refresh assembly")
		return
	}
	writeJSON(w, http.StatusOK, toAssemblyDTO(*a))
}

func (h *Handler) ChangeAssemblyVersion(w http.ResponseWriter, r *http.Request) {
	var req ChangeVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Version == "" {
		writeError(w, http.StatusBadRequest, "version is required", nil)
		return
	}
	a, err := h.Templates.ChangeVersion(r.Context(), chi.URLParam(r, "id"), req.Version)
	if err != nil {
		h.writeDomainError(w, err, "failed to change version")
		return
	}
	writeJSON(w, http.StatusOK, toAssemblyDTO(*a))
}

// =============================================================================
// COMPONENT HANDLERS
// =============================================================================

func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.Repo.ListComponents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to list components")
		return
	}
	dtos := make([]ComponentDTO, 0, len(components))
	for _, c := range components {
		dtos = append(dtos, toComponentDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddComponent(w http.ResponseWriter, r *http.Request) {
	estimateID := chi.URLParam(r, "id")
	est, err := h.Repo.GetEstimate(r.Context(), estimateID)
	if err != nil {
		h.writeDomainError(w, err, "failed to load estimate")
		return
	}
	if est == nil {
		writeError(w, http.StatusNotFound, "estimate not found", nil)
		return
	}

	var req ComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	qty := decimal.NewFromInt(1)
	if req.Quantity != "" {
		qty, err = decimal.NewFromString(req.Quantity)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid quantity", err)
			return
		}
	}
	price := decimal.Zero
	if req.UnitPrice != "" {
		price, err = decimal.NewFromString(req.UnitPrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid unit price", err)
			return
		}
	}
	if err := costing.ValidateQuantity(qty); err != nil {
		h.writeDomainError(w, err, "invalid quantity")
		return
	}
	if err := costing.ValidatePrice(price); err != nil {
		h.writeDomainError(w, err, "invalid unit price")
		return
	}

	now := time.Now().UTC()
	c := costing.Component{
		ID: uuid.NewString(), EstimateID: estimateID, PartID: req.PartID,
		Name: req.Name, Description: req.Description, PartNumber: req.PartNumber,
		Manufacturer: req.Manufacturer, UnitPrice: price, Quantity: qty,
		UnitOfMeasure: req.UnitOfMeasure, Category: req.Category, Notes: req.Notes,
		SortOrder: req.SortOrder, CreatedAt: now, UpdatedAt: now,
	}
	if err := h.Repo.AddComponent(r.Context(), c); err != nil {
		h.writeDomainError(w, err, "failed to add component")
		return
	}
	writeJSON(w, http.StatusCreated, toComponentDTO(c))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Repo.ListParts(r.Context())
	if err != nil {
		h.writeDomainError(w, err, "failed to list parts")
		return
	}
	dtos := make([]PartDTO, 0, len(parts))
	for _, p := range parts {
		dto, err := h.toPartDTO(r.Context(), p)
		if err != nil {
			h.writeDomainError(w, err, "failed to resolve prices")
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var req PartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.PartNumber == "" {
		writeError(w, http.StatusBadRequest, "part_number is required", nil)
		return
	}

	categoryID := ""
	if req.Category != "" {
		cat, err := h.Repo.GetOrCreatePartCategory(r.Context(), req.Category)
		if err != nil {
			h.writeDomainError(w, err, "failed to resolve category")
			return
		}
		if cat != nil {
			categoryID = cat.ID
		}
	}

	now := time.Now().UTC()
	p := catalog.Part{
		ID: uuid.NewString(), CategoryID: categoryID, Model: req.Model,
		Rating: req.Rating, MasterItemNumber: req.MasterItemNumber,
		Manufacturer: req.Manufacturer, PartNumber: req.PartNumber, UPC: req.UPC,
		Description: req.Description, Vendor: req.Vendor,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := h.Repo.SavePart(r.Context(), p); err != nil {
		h.writeDomainError(w, err, "failed to create part")
		return
	}
	dto, _ := h.toPartDTO(r.Context(), p)
	writeJSON(w, http.StatusCreated, dto)
}

func (h *Handler) GetPart(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.GetPart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load part")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "part not found", nil)
		return
	}
	dto, err := h.toPartDTO(r.Context(), *p)
	if err != nil {
		h.writeDomainError(w, err, "failed to resolve price")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// LookupPart resolves a part by part number, master item number, or UPC.
func (h *Handler) LookupPart(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier query parameter is required", nil)
		return
	}
	p, err := h.Repo.FindPartByIdentifier(r.Context(), identifier)
	if err != nil {
		h.writeDomainError(w, err, "failed to look up part")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "part not found", nil)
		return
	}
	dto, err := h.toPartDTO(r.Context(), *p)
	if err != nil {
		h.writeDomainError(w, err, "failed to resolve price")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) UpdatePartPrice(w http.ResponseWriter, r *http.Request) {
	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price", err)
		return
	}
	var effective *time.Time
	if req.EffectiveDate != "" {
		t, err := time.Parse("2006-01-02", req.EffectiveDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid effective_date (want YYYY-MM-DD)", err)
			return
		}
		effective = &t
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	update, err := h.Prices.UpdatePrice(r.Context(), chi.URLParam(r, "id"), price, req.Reason, source, effective)
	if err != nil {
		h.writeDomainError(w, err, "failed to update price")
		return
	}
	h.Metrics.PriceUpdate(update.Changed)

	dto := PriceUpdateDTO{
		PartID:   update.PartID,
		Changed:  update.Changed,
		OldPrice: update.OldPrice.StringFixed(2),
		NewPrice: update.NewPrice.StringFixed(2),
		Message:  update.Message,
	}
	if update.Record != nil {
		rec := toPriceRecordDTO(*update.Record)
		dto.Record = &rec
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}
	records, err := h.Prices.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.writeDomainError(w, err, "failed to load price history")
		return
	}
	dtos := make([]PriceRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toPriceRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) toPartDTO(ctx context.Context, p catalog.Part) (PartDTO, error) {
	price, err := h.Prices.CurrentPrice(ctx, p.ID)
	if err != nil {
		return PartDTO{}, err
	}
	return PartDTO{
		ID: p.ID, CategoryID: p.CategoryID, Model: p.Model, Rating: p.Rating,
		MasterItemNumber: p.MasterItemNumber, Manufacturer: p.Manufacturer,
		PartNumber: p.PartNumber, UPC: p.UPC, Description: p.Description,
		Vendor: p.Vendor, CurrentPrice: price.StringFixed(2),
	}, nil
}

// =============================================================================
// STANDARD ASSEMBLY HANDLERS
// =============================================================================

func (h *Handler) CreateStandardAssembly(w http.ResponseWriter, r *http.Request) {
	var req StandardAssemblyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	now := time.Now().UTC()
	sa := template.StandardAssembly{
		ID: uuid.NewString(), Name: req.Name, AssemblyNumber: req.AssemblyNumber,
		Description: req.Description, CategoryID: req.CategoryID,
		Version: "1.0", Active: true, Template: true, CreatedBy: req.CreatedBy,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := h.Repo.SaveStandardAssembly(r.Context(), sa); err != nil {
		h.writeDomainError(w, err, "failed to create standard assembly")
		return
	}

	for i, comp := range req.Components {
		qty, err := decimal.NewFromString(comp.Quantity)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid component quantity", err)
			return
		}
		if err := costing.ValidateQuantity(qty); err != nil {
			h.writeDomainError(w, err, "invalid component quantity")
			return
		}
		sortOrder := comp.SortOrder
		if sortOrder == 0 {
			sortOrder = i + 1
		}
		if err := h.Repo.AddTemplateComponent(r.Context(), template.Component{
			ID: uuid.NewString(), StandardAssemblyID: sa.ID, PartID: comp.PartID,
			Quantity: qty, UnitOfMeasure: comp.UnitOfMeasure, Notes: comp.Notes,
			SortOrder: sortOrder, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			h.writeDomainError(w, err, "failed to add component")
			return
		}
	}
	writeJSON(w, http.StatusCreated, toStandardAssemblyDTO(sa))
}

func (h *Handler) GetStandardAssembly(w http.ResponseWriter, r *http.Request) {
	sa, err := h.Templates.ActiveTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load standard assembly")
		return
	}
	writeJSON(w, http.StatusOK, toStandardAssemblyDTO(*sa))
}

func (h *Handler) GetStandardAssemblyComponents(w http.ResponseWriter, r *http.Request) {
	details, err := h.Repo.ComponentDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load components")
		return
	}
	dtos := make([]ComponentDetailDTO, 0, len(details))
	for _, d := range details {
		dtos = append(dtos, toComponentDetailDTO(d))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ListTemplateVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.Templates.VersionHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load version history")
		return
	}
	dtos := make([]StandardAssemblyDTO, 0, len(versions))
	for _, v := range versions {
		dtos = append(dtos, toStandardAssemblyDTO(v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTemplateVersion(w http.ResponseWriter, r *http.Request) {
	var req NewVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	created, err := h.Templates.CreateNewVersion(r.Context(), chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		h.writeDomainError(w, err, "failed to create version")
		return
	}
	writeJSON(w, http.StatusCreated, toStandardAssemblyDTO(*created))
}

func (h *Handler) ListVersionAudit(w http.ResponseWriter, r *http.Request) {
	records, err := h.Repo.ListVersionRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load audit log")
		return
	}
	dtos := make([]VersionRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, VersionRecordDTO{
			ID: rec.ID, StandardAssemblyID: rec.StandardAssemblyID,
			Version: rec.Version, Notes: rec.Notes, CreatedBy: rec.CreatedBy,
			CreatedAt: fmtTime(rec.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req ApplyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.EstimateID == "" {
		writeError(w, http.StatusBadRequest, "estimate_id is required", nil)
		return
	}
	multiplier := decimal.Zero
	if req.Multiplier != "" {
		var err error
		multiplier, err = decimal.NewFromString(req.Multiplier)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid multiplier", err)
			return
		}
	}

	a, err := h.Templates.ApplyToEstimate(r.Context(), chi.URLParam(r, "id"), req.EstimateID, multiplier)
	if err != nil {
		h.writeDomainError(w, err, "failed to apply template")
		return
	}
	h.Metrics.TemplateApply()
	writeJSON(w, http.StatusCreated, toAssemblyDTO(*a))
}

func (h *Handler) CompareTemplateVersions(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "a and b query parameters are required", nil)
		return
	}
	diff, err := h.Templates.Compare(r.Context(), a, b)
	if err != nil {
		h.writeDomainError(w, err, "failed to compare versions")
		return
	}
	writeJSON(w, http.StatusOK, toDiffDTO(diff))
}

// =============================================================================
// MOTOR HANDLERS
// =============================================================================

func (h *Handler) ListMotors(w http.ResponseWriter, r *http.Request) {
	motors, err := h.Repo.ListMotors(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to list motors")
		return
	}
	dtos := make([]MotorDTO, 0, len(motors))
	for _, m := range motors {
		dtos = append(dtos, toMotorDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateMotor(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	p, err := h.Repo.GetProject(r.Context(), projectID)
	if err != nil {
		h.writeDomainError(w, err, "failed to load project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found", nil)
		return
	}

	var req MotorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	m, err := motorFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid motor fields", err)
		return
	}
	if m.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.ProjectID = projectID
	m.Revision = motor.Revision{Major: 1, Minor: 0}
	m.RevisionClass = motor.ClassMajor
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := h.Repo.SaveMotor(r.Context(), m); err != nil {
		h.writeDomainError(w, err, "failed to create motor")
		return
	}
	writeJSON(w, http.StatusCreated, toMotorDTO(m))
}

func (h *Handler) GetMotor(w http.ResponseWriter, r *http.Request) {
	m, err := h.Repo.GetMotor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load motor")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "motor not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toMotorDTO(*m))
}

// UpdateMotor applies a revision-controlled edit. The request carries
// the full proposed field state; unchanged requests are a no-op.
func (h *Handler) UpdateMotor(w http.ResponseWriter, r *http.Request) {
	motorID := chi.URLParam(r, "id")
	current, err := h.Repo.GetMotor(r.Context(), motorID)
	if err != nil {
		h.writeDomainError(w, err, "failed to load motor")
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "motor not found", nil)
		return
	}

	var req MotorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	proposed, err := motorFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid motor fields", err)
		return
	}

	class := motor.Class(req.RevisionClass)
	if req.RevisionClass == "" {
		_, class = motor.DetectChanges(current, &proposed)
	} else if class != motor.ClassMajor && class != motor.ClassMinor && class != motor.ClassOverwrite {
		writeError(w, http.StatusBadRequest, "revision_class must be major, minor, or overwrite", nil)
		return
	}

	result, err := h.Motors.ApplyEdit(r.Context(), motorID, proposed, req.ChangedBy, req.ChangeDescription, class)
	if err != nil {
		h.writeDomainError(w, err, "failed to apply edit")
		return
	}
	if !result.NoChanges {
		h.Metrics.MotorRevision(class)
	}

	writeJSON(w, http.StatusOK, EditResultDTO{
		Motor:     toMotorDTO(*result.Motor),
		Changes:   toFieldChangeDTOs(result.Changes),
		Revision:  result.Revision.String(),
		NoChanges: result.NoChanges,
	})
}

func (h *Handler) ListMotorRevisions(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.Motors.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load revision history")
		return
	}
	dtos := make([]SnapshotDTO, 0, len(snapshots))
	for _, s := range snapshots {
		dtos = append(dtos, toSnapshotDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) RevertMotor(w http.ResponseWriter, r *http.Request) {
	var req RevertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	target, err := motor.ParseRevision(req.Revision)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid revision", err)
		return
	}

	reverted, err := h.Motors.RevertToRevision(r.Context(), chi.URLParam(r, "id"), target, req.ChangedBy)
	if err != nil {
		h.writeDomainError(w, err, "failed to revert motor")
		return
	}
	h.Metrics.MotorRevision(motor.ClassMajor)
	writeJSON(w, http.StatusOK, toMotorDTO(*reverted))
}

// CompareMotorRevisions diffs revision a against revision b, or against
// the live record when b is omitted.
func (h *Handler) CompareMotorRevisions(w http.ResponseWriter, r *http.Request) {
	motorID := chi.URLParam(r, "id")
	aParam := r.URL.Query().Get("a")
	if aParam == "" {
		writeError(w, http.StatusBadRequest, "a query parameter is required", nil)
		return
	}
	a, err := motor.ParseRevision(aParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid revision", err)
		return
	}

	var changes []motor.FieldChange
	if bParam := r.URL.Query().Get("b"); bParam != "" {
		b, err := motor.ParseRevision(bParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid revision", err)
			return
		}
		changes, err = h.Motors.CompareRevisions(r.Context(), motorID, a, b)
		if err != nil {
			h.writeDomainError(w, err, "failed to compare revisions")
			return
		}
	} else {
		changes, err = h.Motors.CompareWithCurrent(r.Context(), motorID, a)
		if err != nil {
			h.writeDomainError(w, err, "failed to compare revisions")
			return
		}
	}
	writeJSON(w, http.StatusOK, toFieldChangeDTOs(changes))
}

func (h *Handler) GetMotorAmps(w http.ResponseWriter, r *http.Request) {
	m, err := h.Repo.GetMotor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "failed to load motor")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "motor not found", nil)
		return
	}

	amps, err := h.Motors.Amps(r.Context(), m)
	if err != nil {
		h.writeDomainError(w, err, "failed to resolve amps")
		return
	}
	total, err := h.Motors.TotalAmps(r.Context(), m)
	if err != nil {
		h.writeDomainError(w, err, "failed to resolve amps")
		return
	}
	drive, err := h.Motors.DriveRequiredCurrent(r.Context(), m)
	if err != nil {
		h.writeDomainError(w, err, "failed to resolve amps")
		return
	}
	writeJSON(w, http.StatusOK, AmpsDTO{
		MotorID:              m.ID,
		Amps:                 amps.StringFixed(2),
		AmpsPerPhase:         motor.AmpsPerPhase(m).StringFixed(2),
		TotalAmps:            total.StringFixed(2),
		DriveRequiredCurrent: drive.StringFixed(2),
	})
}

// =============================================================================
// PARSING AND RESPONSE HELPERS
// =============================================================================

func parseRates(dto LaborRatesDTO, snapshotDate time.Time) (costing.LaborRates, error) {
	eng, err := decimal.NewFromString(dto.Engineering)
	if err != nil {
		return costing.LaborRates{}, err
	}
	panel, err := decimal.NewFromString(dto.PanelShop)
	if err != nil {
		return costing.LaborRates{}, err
	}
	machine, err := decimal.NewFromString(dto.MachineAssembly)
	if err != nil {
		return costing.LaborRates{}, err
	}
	return costing.LaborRates{
		Engineering: eng, PanelShop: panel, MachineAssembly: machine,
		SnapshotDate: snapshotDate,
	}, nil
}

func parseHours(dto LaborHoursDTO) (costing.LaborHours, error) {
	var h costing.LaborHours
	var err error
	if h.Engineering, err = parseOrZero(dto.Engineering); err != nil {
		return h, err
	}
	if h.PanelShop, err = parseOrZero(dto.PanelShop); err != nil {
		return h, err
	}
	if h.MachineAssembly, err = parseOrZero(dto.MachineAssembly); err != nil {
		return h, err
	}
	return h, nil
}

func parseOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func motorFromRequest(req MotorRequest) (motor.Motor, error) {
	var m motor.Motor
	var err error

	if m.HP, err = parseOptionalDecimal(req.HP); err != nil {
		return m, err
	}
	if m.PowerRating, err = parseOptionalDecimal(req.PowerRating); err != nil {
		return m, err
	}
	if m.ManualAmps, err = parseOptionalDecimal(req.ManualAmps); err != nil {
		return m, err
	}
	if m.OverloadPercent, err = parseOrZero(req.OverloadPercent); err != nil {
		return m, err
	}
	if m.Voltage, err = parseOrZero(req.Voltage); err != nil {
		return m, err
	}

	m.LoadType = req.LoadType
	if m.LoadType == "" {
		m.LoadType = motor.LoadTypeMotor
	}
	m.Name = req.Name
	m.Location = req.Location
	m.Enclosure = req.Enclosure
	m.Frame = req.Frame
	m.Notes = req.Notes
	m.SpeedRange = req.SpeedRange
	m.Qty = req.Qty
	if m.Qty == 0 {
		m.Qty = 1
	}
	m.ContinuousLoad = req.ContinuousLoad
	m.VFDTypeID = req.VFDTypeID
	m.PowerUnit = req.PowerUnit
	m.PhaseConfig = req.PhaseConfig
	m.NECAmpsOverride = req.NECAmpsOverride
	m.VFDOverride = req.VFDOverride
	m.SelectedVFDPartID = req.SelectedVFDPartID
	m.DutyType = req.DutyType
	m.SortOrder = req.SortOrder
	return m, nil
}

// writeDomainError maps domain error classes onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case costing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case costing.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case costing.IsRetryable(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
