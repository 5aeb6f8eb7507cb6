/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND QUANTITIES:
  Decimal values travel as JSON strings ("145.00", "2.5") so clients
  never see float rounding. Parsing happens in the handlers.

SEE ALSO:
  - handlers.go: parsing, validation, and domain calls
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/motor"
	"github.com/voltworks/estimator/template"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// PROJECTS AND ESTIMATES
// =============================================================================

type ProjectDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Client      string `json:"client,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Revision    string `json:"revision,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type ProjectRequest struct {
	Name        string `json:"name"`
	Client      string `json:"client"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Revision    string `json:"revision"`
	Remarks     string `json:"remarks"`
}

type LaborRatesDTO struct {
	Engineering     string `json:"engineering"`
	PanelShop       string `json:"panel_shop"`
	MachineAssembly string `json:"machine_assembly"`
	SnapshotDate    string `json:"snapshot_date,omitempty"`
}

type LaborHoursDTO struct {
	Engineering     string `json:"engineering"`
	PanelShop       string `json:"panel_shop"`
	MachineAssembly string `json:"machine_assembly"`
}

type EstimateDTO struct {
	ID             string        `json:"id"`
	ProjectID      string        `json:"project_id"`
	Number         string        `json:"number,omitempty"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	SortOrder      int           `json:"sort_order"`
	RevisionNumber int           `json:"revision_number"`
	Optional       bool          `json:"optional"`
	Rates          LaborRatesDTO `json:"rates"`
	Hours          LaborHoursDTO `json:"hours"`
	CreatedAt      string        `json:"created_at,omitempty"`
	UpdatedAt      string        `json:"updated_at,omitempty"`
}

// EstimateRequest creates or updates an estimate. Omitted rates snapshot
// the shop defaults; omitted hours default to zero.
type EstimateRequest struct {
	Number      string         `json:"number"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	SortOrder   int            `json:"sort_order"`
	Optional    bool           `json:"optional"`
	Rates       *LaborRatesDTO `json:"rates,omitempty"`
	Hours       *LaborHoursDTO `json:"hours,omitempty"`
}

type EstimateRevisionDTO struct {
	ID              string `json:"id"`
	EstimateID      string `json:"estimate_id"`
	RevisionNumber  int    `json:"revision_number"`
	ChangesSummary  string `json:"changes_summary,omitempty"`
	DetailedChanges string `json:"detailed_changes,omitempty"`
	CreatedBy       string `json:"created_by,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type CreateRevisionRequest struct {
	ChangesSummary  string `json:"changes_summary"`
	DetailedChanges string `json:"detailed_changes"`
	CreatedBy       string `json:"created_by"`
}

// =============================================================================
// ASSEMBLIES AND COMPONENTS
// =============================================================================

type AssemblyDTO struct {
	ID              string        `json:"id"`
	EstimateID      string        `json:"estimate_id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	SortOrder       int           `json:"sort_order"`
	TemplateID      string        `json:"template_id,omitempty"`
	TemplateVersion string        `json:"template_version,omitempty"`
	Quantity        string        `json:"quantity"`
	Hours           LaborHoursDTO `json:"hours"`
	CreatedAt       string        `json:"created_at,omitempty"`
}

type AssemblyRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Hours       *LaborHoursDTO `json:"hours,omitempty"`
}

type AssemblyPartDTO struct {
	ID            string `json:"id"`
	AssemblyID    string `json:"assembly_id"`
	PartID        string `json:"part_id"`
	Quantity      string `json:"quantity"`
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`
	Notes         string `json:"notes,omitempty"`
	SortOrder     int    `json:"sort_order"`
}

type AddAssemblyPartRequest struct {
	PartID        string `json:"part_id"`
	Quantity      string `json:"quantity"`
	UnitOfMeasure string `json:"unit_of_measure"`
	Notes         string `json:"notes"`
	SortOrder     int    `json:"sort_order"`
}

type UpdateQuantityRequest struct {
	Quantity string `json:"quantity"`
}

type ComponentDTO struct {
	ID            string `json:"id"`
	EstimateID    string `json:"estimate_id"`
	PartID        string `json:"part_id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	PartNumber    string `json:"part_number,omitempty"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	UnitPrice     string `json:"unit_price"`
	Quantity      string `json:"quantity"`
	TotalPrice    string `json:"total_price"`
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`
	Category      string `json:"category,omitempty"`
	Notes         string `json:"notes,omitempty"`
	SortOrder     int    `json:"sort_order"`
}

type ComponentRequest struct {
	PartID        string `json:"part_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PartNumber    string `json:"part_number"`
	Manufacturer  string `json:"manufacturer"`
	UnitPrice     string `json:"unit_price"`
	Quantity      string `json:"quantity"`
	UnitOfMeasure string `json:"unit_of_measure"`
	Category      string `json:"category"`
	Notes         string `json:"notes"`
	SortOrder     int    `json:"sort_order"`
}

// =============================================================================
// TOTALS
// =============================================================================

type LineTotalDTO struct {
	AssemblyPartID string `json:"assembly_part_id"`
	PartID         string `json:"part_id"`
	Quantity       string `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	Total          string `json:"total"`
}

type AssemblyTotalsDTO struct {
	AssemblyID    string         `json:"assembly_id"`
	MaterialTotal string         `json:"material_total"`
	LaborCost     string         `json:"labor_cost"`
	Lines         []LineTotalDTO `json:"lines"`
}

type EstimateTotalsDTO struct {
	EstimateID    string        `json:"estimate_id"`
	MaterialTotal string        `json:"material_total"`
	LaborHours    LaborHoursDTO `json:"labor_hours"`
	LaborCost     string        `json:"labor_cost"`
	GrandTotal    string        `json:"grand_total"`
}

type ProjectTotalsDTO struct {
	ProjectID       string `json:"project_id"`
	MaterialTotal   string `json:"material_total"`
	LaborCost       string `json:"labor_cost"`
	GrandTotal      string `json:"grand_total"`
	EstimateCount   int    `json:"estimate_count"`
	OptionalSkipped int    `json:"optional_skipped"`
}

// =============================================================================
// CATALOG
// =============================================================================

type PartDTO struct {
	ID               string `json:"id"`
	CategoryID       string `json:"category_id,omitempty"`
	Model            string `json:"model,omitempty"`
	Rating           string `json:"rating,omitempty"`
	MasterItemNumber string `json:"master_item_number,omitempty"`
	Manufacturer     string `json:"manufacturer,omitempty"`
	PartNumber       string `json:"part_number"`
	UPC              string `json:"upc,omitempty"`
	Description      string `json:"description,omitempty"`
	Vendor           string `json:"vendor,omitempty"`
	CurrentPrice     string `json:"current_price"`
}

type PartRequest struct {
	Model            string `json:"model"`
	Rating           string `json:"rating"`
	MasterItemNumber string `json:"master_item_number"`
	Manufacturer     string `json:"manufacturer"`
	PartNumber       string `json:"part_number"`
	UPC              string `json:"upc"`
	Description      string `json:"description"`
	Vendor           string `json:"vendor"`
	Category         string `json:"category"`
}

type PriceRecordDTO struct {
	ID            string  `json:"id"`
	PartID        string  `json:"part_id"`
	OldPrice      *string `json:"old_price"`
	NewPrice      string  `json:"new_price"`
	ChangedAt     string  `json:"changed_at"`
	Reason        string  `json:"reason,omitempty"`
	Source        string  `json:"source,omitempty"`
	EffectiveDate string  `json:"effective_date,omitempty"`
	Current       bool    `json:"is_current"`
}

type UpdatePriceRequest struct {
	Price         string `json:"price"`
	Reason        string `json:"reason"`
	Source        string `json:"source"`
	EffectiveDate string `json:"effective_date"` // YYYY-MM-DD, optional
}

type PriceUpdateDTO struct {
	PartID   string          `json:"part_id"`
	Changed  bool            `json:"changed"`
	OldPrice string          `json:"old_price"`
	NewPrice string          `json:"new_price"`
	Message  string          `json:"message"`
	Record   *PriceRecordDTO `json:"record,omitempty"`
}

// =============================================================================
// STANDARD ASSEMBLIES
// =============================================================================

type StandardAssemblyDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AssemblyNumber string `json:"assembly_number,omitempty"`
	Description    string `json:"description,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
	BaseAssemblyID string `json:"base_assembly_id,omitempty"`
	Version        string `json:"version"`
	Active         bool   `json:"active"`
	Template       bool   `json:"template"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type StandardAssemblyRequest struct {
	Name           string                     `json:"name"`
	AssemblyNumber string                     `json:"assembly_number"`
	Description    string                     `json:"description"`
	CategoryID     string                     `json:"category_id"`
	CreatedBy      string                     `json:"created_by"`
	Components     []TemplateComponentRequest `json:"components"`
}

type TemplateComponentRequest struct {
	PartID        string `json:"part_id"`
	Quantity      string `json:"quantity"`
	UnitOfMeasure string `json:"unit_of_measure"`
	Notes         string `json:"notes"`
	SortOrder     int    `json:"sort_order"`
}

type NewVersionRequest struct {
	Notes string `json:"notes"`
}

type ApplyTemplateRequest struct {
	EstimateID string `json:"estimate_id"`
	Multiplier string `json:"multiplier"` // blank defaults to 1
}

type ChangeVersionRequest struct {
	Version string `json:"version"`
}

type VersionRecordDTO struct {
	ID                 string `json:"id"`
	StandardAssemblyID string `json:"standard_assembly_id"`
	Version            string `json:"version"`
	Notes              string `json:"notes,omitempty"`
	CreatedBy          string `json:"created_by,omitempty"`
	CreatedAt          string `json:"created_at"`
}

type ComponentDetailDTO struct {
	PartID        string `json:"part_id"`
	PartNumber    string `json:"part_number"`
	Description   string `json:"description,omitempty"`
	Quantity      string `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type ModifiedComponentDTO struct {
	ComponentDetailDTO
	Changes []string `json:"changes"`
}

type DiffDTO struct {
	Added     []ComponentDetailDTO   `json:"added"`
	Removed   []ComponentDetailDTO   `json:"removed"`
	Modified  []ModifiedComponentDTO `json:"modified"`
	Unchanged []ComponentDetailDTO   `json:"unchanged"`
}

// =============================================================================
// MOTORS
// =============================================================================

type MotorDTO struct {
	ID                string  `json:"id"`
	ProjectID         string  `json:"project_id"`
	LoadType          string  `json:"load_type"`
	Name              string  `json:"name"`
	Location          string  `json:"location,omitempty"`
	Enclosure         string  `json:"enclosure,omitempty"`
	Frame             string  `json:"frame,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	HP                *string `json:"hp"`
	SpeedRange        string  `json:"speed_range,omitempty"`
	OverloadPercent   string  `json:"overload_percent"`
	Voltage           string  `json:"voltage"`
	Qty               int     `json:"qty"`
	ContinuousLoad    bool    `json:"continuous_load"`
	VFDTypeID         string  `json:"vfd_type_id,omitempty"`
	PowerRating       *string `json:"power_rating"`
	PowerUnit         string  `json:"power_unit,omitempty"`
	PhaseConfig       string  `json:"phase_config,omitempty"`
	NECAmpsOverride   bool    `json:"nec_amps_override"`
	ManualAmps        *string `json:"manual_amps"`
	VFDOverride       bool    `json:"vfd_override"`
	SelectedVFDPartID string  `json:"selected_vfd_part_id,omitempty"`
	DutyType          string  `json:"duty_type,omitempty"`
	SortOrder         int     `json:"sort_order"`
	Revision          string  `json:"revision"`
	RevisionClass     string  `json:"revision_class"`
	CreatedAt         string  `json:"created_at,omitempty"`
	UpdatedAt         string  `json:"updated_at,omitempty"`
}

// MotorRequest carries the full proposed field state for create and
// edit. Edits additionally name who changed it and the revision class;
// a blank class accepts the detector's suggestion.
type MotorRequest struct {
	LoadType          string  `json:"load_type"`
	Name              string  `json:"name"`
	Location          string  `json:"location"`
	Enclosure         string  `json:"enclosure"`
	Frame             string  `json:"frame"`
	Notes             string  `json:"notes"`
	HP                *string `json:"hp"`
	SpeedRange        string  `json:"speed_range"`
	OverloadPercent   string  `json:"overload_percent"`
	Voltage           string  `json:"voltage"`
	Qty               int     `json:"qty"`
	ContinuousLoad    bool    `json:"continuous_load"`
	VFDTypeID         string  `json:"vfd_type_id"`
	PowerRating       *string `json:"power_rating"`
	PowerUnit         string  `json:"power_unit"`
	PhaseConfig       string  `json:"phase_config"`
	NECAmpsOverride   bool    `json:"nec_amps_override"`
	ManualAmps        *string `json:"manual_amps"`
	VFDOverride       bool    `json:"vfd_override"`
	SelectedVFDPartID string  `json:"selected_vfd_part_id"`
	DutyType          string  `json:"duty_type"`
	SortOrder         int     `json:"sort_order"`

	RevisionClass     string `json:"revision_class"`
	ChangedBy         string `json:"changed_by"`
	ChangeDescription string `json:"change_description"`
}

type FieldChangeDTO struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

type EditResultDTO struct {
	Motor     MotorDTO         `json:"motor"`
	Changes   []FieldChangeDTO `json:"changes"`
	Revision  string           `json:"revision"`
	NoChanges bool             `json:"no_changes"`
}

type SnapshotDTO struct {
	ID                string `json:"id"`
	MotorID           string `json:"motor_id"`
	Revision          string `json:"revision"`
	RevisionClass     string `json:"revision_class"`
	FieldsChanged     string `json:"fields_changed,omitempty"`
	Name              string `json:"name"`
	ChangedBy         string `json:"changed_by,omitempty"`
	ChangeDescription string `json:"change_description,omitempty"`
	CreatedAt         string `json:"created_at"`
}

type RevertRequest struct {
	Revision  string `json:"revision"`
	ChangedBy string `json:"changed_by"`
}

type AmpsDTO struct {
	MotorID              string `json:"motor_id"`
	Amps                 string `json:"amps"`
	AmpsPerPhase         string `json:"amps_per_phase"`
	TotalAmps            string `json:"total_amps"`
	DriveRequiredCurrent string `json:"drive_required_current"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toProjectDTO(p costing.Project) ProjectDTO {
	return ProjectDTO{
		ID: p.ID, Name: p.Name, Client: p.Client, Description: p.Description,
		Status: p.Status, Revision: p.Revision, Remarks: p.Remarks, Active: p.Active,
		CreatedAt: fmtTime(p.CreatedAt), UpdatedAt: fmtTime(p.UpdatedAt),
	}
}

func toRatesDTO(r costing.LaborRates) LaborRatesDTO {
	return LaborRatesDTO{
		Engineering:     r.Engineering.String(),
		PanelShop:       r.PanelShop.String(),
		MachineAssembly: r.MachineAssembly.String(),
		SnapshotDate:    fmtTime(r.SnapshotDate),
	}
}

func toHoursDTO(h costing.LaborHours) LaborHoursDTO {
	return LaborHoursDTO{
		Engineering:     h.Engineering.String(),
		PanelShop:       h.PanelShop.String(),
		MachineAssembly: h.MachineAssembly.String(),
	}
}

func toEstimateDTO(e costing.Estimate) EstimateDTO {
	return EstimateDTO{
		ID: e.ID, ProjectID: e.ProjectID, Number: e.Number, Name: e.Name,
		Description: e.Description, SortOrder: e.SortOrder,
		RevisionNumber: e.RevisionNumber, Optional: e.Optional,
		Rates: toRatesDTO(e.Rates), Hours: toHoursDTO(e.Hours),
		CreatedAt: fmtTime(e.CreatedAt), UpdatedAt: fmtTime(e.UpdatedAt),
	}
}

func toAssemblyDTO(a costing.Assembly) AssemblyDTO {
	return AssemblyDTO{
		ID: a.ID, EstimateID: a.EstimateID, Name: a.Name, Description: a.Description,
		SortOrder: a.SortOrder, TemplateID: a.TemplateID, TemplateVersion: a.TemplateVersion,
		Quantity: a.Quantity.String(), Hours: toHoursDTO(a.Hours), CreatedAt: fmtTime(a.CreatedAt),
	}
}

func toAssemblyPartDTO(ap costing.AssemblyPart) AssemblyPartDTO {
	return AssemblyPartDTO{
		ID: ap.ID, AssemblyID: ap.AssemblyID, PartID: ap.PartID,
		Quantity: ap.Quantity.String(), UnitOfMeasure: ap.UnitOfMeasure,
		Notes: ap.Notes, SortOrder: ap.SortOrder,
	}
}

func toComponentDTO(c costing.Component) ComponentDTO {
	return ComponentDTO{
		ID: c.ID, EstimateID: c.EstimateID, PartID: c.PartID, Name: c.Name,
		Description: c.Description, PartNumber: c.PartNumber, Manufacturer: c.Manufacturer,
		UnitPrice: c.UnitPrice.String(), Quantity: c.Quantity.String(),
		TotalPrice: c.TotalPrice().String(), UnitOfMeasure: c.UnitOfMeasure,
		Category: c.Category, Notes: c.Notes, SortOrder: c.SortOrder,
	}
}

func toPriceRecordDTO(r catalog.PriceRecord) PriceRecordDTO {
	dto := PriceRecordDTO{
		ID: r.ID, PartID: r.PartID, NewPrice: r.NewPrice.String(),
		ChangedAt: fmtTime(r.ChangedAt), Reason: r.Reason, Source: r.Source,
		EffectiveDate: fmtTime(r.EffectiveDate), Current: r.Current,
	}
	if r.OldPrice != nil {
		s := r.OldPrice.String()
		dto.OldPrice = &s
	}
	return dto
}

func toStandardAssemblyDTO(sa template.StandardAssembly) StandardAssemblyDTO {
	return StandardAssemblyDTO{
		ID: sa.ID, Name: sa.Name, AssemblyNumber: sa.AssemblyNumber,
		Description: sa.Description, CategoryID: sa.CategoryID,
		BaseAssemblyID: sa.BaseAssemblyID, Version: sa.Version,
		Active: sa.Active, Template: sa.Template, CreatedBy: sa.CreatedBy,
		CreatedAt: fmtTime(sa.CreatedAt),
	}
}

func toComponentDetailDTO(d template.ComponentDetail) ComponentDetailDTO {
	return ComponentDetailDTO{
		PartID: d.PartID, PartNumber: d.PartNumber, Description: d.Description,
		Quantity: d.Quantity.String(), UnitPrice: d.UnitPrice.String(),
		UnitOfMeasure: d.UnitOfMeasure, Notes: d.Notes,
	}
}

func toDiffDTO(d *template.Diff) DiffDTO {
	dto := DiffDTO{
		Added:     []ComponentDetailDTO{},
		Removed:   []ComponentDetailDTO{},
		Modified:  []ModifiedComponentDTO{},
		Unchanged: []ComponentDetailDTO{},
	}
	for _, c := range d.Added {
		dto.Added = append(dto.Added, toComponentDetailDTO(c))
	}
	for _, c := range d.Removed {
		dto.Removed = append(dto.Removed, toComponentDetailDTO(c))
	}
	for _, m := range d.Modified {
		dto.Modified = append(dto.Modified, ModifiedComponentDTO{
			ComponentDetailDTO: toComponentDetailDTO(m.ComponentDetail),
			Changes:            m.Changes,
		})
	}
	for _, c := range d.Unchanged {
		dto.Unchanged = append(dto.Unchanged, toComponentDetailDTO(c))
	}
	return dto
}

func toMotorDTO(m motor.Motor) MotorDTO {
	return MotorDTO{
		ID: m.ID, ProjectID: m.ProjectID, LoadType: m.LoadType, Name: m.Name,
		Location: m.Location, Enclosure: m.Enclosure, Frame: m.Frame, Notes: m.Notes,
		HP: decimalPtrString(m.HP), SpeedRange: m.SpeedRange,
		OverloadPercent: m.OverloadPercent.String(), Voltage: m.Voltage.String(),
		Qty: m.Qty, ContinuousLoad: m.ContinuousLoad, VFDTypeID: m.VFDTypeID,
		PowerRating: decimalPtrString(m.PowerRating), PowerUnit: m.PowerUnit,
		PhaseConfig: m.PhaseConfig, NECAmpsOverride: m.NECAmpsOverride,
		ManualAmps: decimalPtrString(m.ManualAmps), VFDOverride: m.VFDOverride,
		SelectedVFDPartID: m.SelectedVFDPartID, DutyType: m.DutyType,
		SortOrder: m.SortOrder, Revision: m.Revision.String(),
		RevisionClass: string(m.RevisionClass),
		CreatedAt:     fmtTime(m.CreatedAt), UpdatedAt: fmtTime(m.UpdatedAt),
	}
}

func toSnapshotDTO(s motor.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		ID: s.ID, MotorID: s.MotorID, Revision: s.Revision.String(),
		RevisionClass: string(s.RevisionClass), FieldsChanged: s.FieldsChanged,
		Name: s.Name, ChangedBy: s.ChangedBy, ChangeDescription: s.ChangeDescription,
		CreatedAt: fmtTime(s.CreatedAt),
	}
}

func toFieldChangeDTOs(changes []motor.FieldChange) []FieldChangeDTO {
	dtos := make([]FieldChangeDTO, 0, len(changes))
	for _, ch := range changes {
		dtos = append(dtos, FieldChangeDTO{Field: ch.Field, Old: ch.Old, New: ch.New})
	}
	return dtos
}

func decimalPtrString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
