package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/voltworks/estimator/costing"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROJECTS
// =============================================================================

func (c conn) SaveProject(ctx context.Context, p costing.Project) error {
	query := `
		INSERT INTO projects (id, name, client, description, status, revision, remarks, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			client = excluded.client,
			description = excluded.description,
			status = excluded.status,
			revision = excluded.revision,
			remarks = excluded.remarks,
			active = excluded.active,
			updated_at = excluded.updated_at
	`
	_, err := c.q.ExecContext(ctx, query,
		p.ID, p.Name, p.Client, p.Description, p.Status, p.Revision, p.Remarks, p.Active,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	return err
}

func (c conn) GetProject(ctx context.Context, id string) (*costing.Project, error) {
	var p costing.Project
	var createdAt, updatedAt string
	err := c.q.QueryRowContext(ctx,
		`SELECT id, name, client, description, status, revision, remarks, active, created_at, updated_at
		 FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Client, &p.Description, &p.Status, &p.Revision, &p.Remarks, &p.Active, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (c conn) ListProjects(ctx context.Context) ([]costing.Project, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, name, client, description, status, revision, remarks, active, created_at, updated_at
		 FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []costing.Project
	for rows.Next() {
		var p costing.Project
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Client, &p.Description, &p.Status, &p.Revision, &p.Remarks, &p.Active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project; foreign keys cascade to estimates,
// assemblies, parts lists, components, and motors.
func (c conn) DeleteProject(ctx context.Context, id string) error {
	_, err := c.q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

// =============================================================================
// ESTIMATES
// =============================================================================

func (c conn) SaveEstimate(ctx context.Context, e costing.Estimate) error {
	query := `
		INSERT INTO estimates
		(id, project_id, number, name, description, sort_order, revision_number, optional,
		 rate_engineering, rate_panel_shop, rate_machine_assembly, rate_snapshot_date,
		 hours_engineering, hours_panel_shop, hours_machine_assembly, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			name = excluded.name,
			description = excluded.description,
			sort_order = excluded.sort_order,
			optional = excluded.optional,
			hours_engineering = excluded.hours_engineering,
			hours_panel_shop = excluded.hours_panel_shop,
			hours_machine_assembly = excluded.hours_machine_assembly,
			updated_at = excluded.updated_at
	`
	_, err := c.q.ExecContext(ctx, query,
		e.ID, e.ProjectID, e.Number, e.Name, e.Description, e.SortOrder, e.RevisionNumber, e.Optional,
		e.Rates.Engineering.String(), e.Rates.PanelShop.String(), e.Rates.MachineAssembly.String(),
		formatTime(e.Rates.SnapshotDate),
		e.Hours.Engineering.String(), e.Hours.PanelShop.String(), e.Hours.MachineAssembly.String(),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	return err
}

const estimateColumns = `id, project_id, number, name, description, sort_order, revision_number, optional,
	rate_engineering, rate_panel_shop, rate_machine_assembly, rate_snapshot_date,
	hours_engineering, hours_panel_shop, hours_machine_assembly, created_at, updated_at`

func scanEstimate(row interface{ Scan(...any) error }) (costing.Estimate, error) {
	var e costing.Estimate
	var rateEng, ratePanel, rateMachine, hoursEng, hoursPanel, hoursMachine string
	var snapshotDate, createdAt, updatedAt string
	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Number, &e.Name, &e.Description, &e.SortOrder, &e.RevisionNumber, &e.Optional,
		&rateEng, &ratePanel, &rateMachine, &snapshotDate,
		&hoursEng, &hoursPanel, &hoursMachine, &createdAt, &updatedAt,
	)
	if err != nil {
		return e, err
	}
	e.Rates = costing.LaborRates{
		Engineering:     parseDecimal(rateEng),
		PanelShop:       parseDecimal(ratePanel),
		MachineAssembly: parseDecimal(rateMachine),
		SnapshotDate:    parseTime(snapshotDate),
	}
	e.Hours = costing.LaborHours{
		Engineering:     parseDecimal(hoursEng),
		PanelShop:       parseDecimal(hoursPanel),
		MachineAssembly: parseDecimal(hoursMachine),
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

func (c conn) GetEstimate(ctx context.Context, id string) (*costing.Estimate, error) {
	row := c.q.QueryRowContext(ctx, "SELECT "+estimateColumns+" FROM estimates WHERE id = ?", id)
	e, err := scanEstimate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c conn) ListEstimates(ctx context.Context, projectID string) ([]costing.Estimate, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT "+estimateColumns+" FROM estimates WHERE project_id = ? ORDER BY sort_order, created_at",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []costing.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

func (c conn) DeleteEstimate(ctx context.Context, id string) error {
	_, err := c.q.ExecContext(ctx, "DELETE FROM estimates WHERE id = ?", id)
	return err
}

// =============================================================================
// ESTIMATE REVISION LOG
// =============================================================================

func (c conn) UpdateEstimateRevision(ctx context.Context, estimateID string, revisionNumber int, at time.Time) error {
	res, err := c.q.ExecContext(ctx,
		"UPDATE estimates SET revision_number = ?, updated_at = ? WHERE id = ?",
		revisionNumber, formatTime(at), estimateID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &costing.NotFoundError{Kind: "estimate", ID: estimateID}
	}
	return nil
}

func (c conn) AppendEstimateRevision(ctx context.Context, rev costing.EstimateRevision) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO estimate_revisions
		 (id, estimate_id, revision_number, changes_summary, detailed_changes, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.EstimateID, rev.RevisionNumber, rev.ChangesSummary, rev.DetailedChanges,
		rev.CreatedBy, formatTime(rev.CreatedAt),
	)
	if isUniqueConstraintError(err) {
		return costing.ErrConflict
	}
	return err
}

func (c conn) ListEstimateRevisions(ctx context.Context, estimateID string) ([]costing.EstimateRevision, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, estimate_id, revision_number, changes_summary, detailed_changes, created_by, created_at
		 FROM estimate_revisions WHERE estimate_id = ? ORDER BY revision_number DESC`,
		estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []costing.EstimateRevision
	for rows.Next() {
		var r costing.EstimateRevision
		var createdAt string
		if err := rows.Scan(&r.ID, &r.EstimateID, &r.RevisionNumber, &r.ChangesSummary, &r.DetailedChanges, &r.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(createdAt)
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}

// =============================================================================
// ASSEMBLIES
// =============================================================================

func (c conn) CreateAssembly(ctx context.Context, a costing.Assembly) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO assemblies
		 (id, estimate_id, name, description, sort_order, template_id, template_version, quantity,
		  hours_engineering, hours_panel_shop, hours_machine_assembly, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EstimateID, a.Name, a.Description, a.SortOrder,
		nullString(a.TemplateID), nullString(a.TemplateVersion), a.Quantity.String(),
		a.Hours.Engineering.String(), a.Hours.PanelShop.String(), a.Hours.MachineAssembly.String(),
		formatTime(a.CreatedAt),
	)
	return err
}

const assemblyColumns = `id, estimate_id, name, description, sort_order, template_id, template_version, quantity,
	hours_engineering, hours_panel_shop, hours_machine_assembly, created_at`

func scanAssembly(row interface{ Scan(...any) error }) (costing.Assembly, error) {
	var a costing.Assembly
	var templateID, templateVersion sql.NullString
	var quantity, hoursEng, hoursPanel, hoursMachine, createdAt string
	err := row.Scan(
		&a.ID, &a.EstimateID, &a.Name, &a.Description, &a.SortOrder,
		&templateID, &templateVersion, &quantity,
		&hoursEng, &hoursPanel, &hoursMachine, &createdAt,
	)
	if err != nil {
		return a, err
	}
	a.TemplateID = templateID.String
	a.TemplateVersion = templateVersion.String
	a.Quantity = parseDecimal(quantity)
	a.Hours = costing.LaborHours{
		Engineering:     parseDecimal(hoursEng),
		PanelShop:       parseDecimal(hoursPanel),
		MachineAssembly: parseDecimal(hoursMachine),
	}
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

func (c conn) GetAssembly(ctx context.Context, id string) (*costing.Assembly, error) {
	row := c.q.QueryRowContext(ctx, "SELECT "+assemblyColumns+" FROM assemblies WHERE id = ?", id)
	a, err := scanAssembly(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c conn) ListAssemblies(ctx context.Context, estimateID string) ([]costing.Assembly, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT "+assemblyColumns+" FROM assemblies WHERE estimate_id = ? ORDER BY sort_order, created_at",
		estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assemblies []costing.Assembly
	for rows.Next() {
		a, err := scanAssembly(rows)
		if err != nil {
			return nil, err
		}
		assemblies = append(assemblies, a)
	}
	return assemblies, rows.Err()
}

func (c conn) NextAssemblySortOrder(ctx context.Context, estimateID string) (int, error) {
	var max sql.NullInt64
	err := c.q.QueryRowContext(ctx,
		"SELECT MAX(sort_order) FROM assemblies WHERE estimate_id = ?", estimateID,
	).Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max.Int64) + 1, nil
}

func (c conn) SetAssemblyTemplate(ctx context.Context, assemblyID, templateID, version string) error {
	res, err := c.q.ExecContext(ctx,
		"UPDATE assemblies SET template_id = ?, template_version = ? WHERE id = ?",
		templateID, version, assemblyID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &costing.NotFoundError{Kind: "assembly", ID: assemblyID}
	}
	return nil
}

// =============================================================================
// ASSEMBLY PARTS
// =============================================================================

func (c conn) AddAssemblyPart(ctx context.Context, ap costing.AssemblyPart) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO assembly_parts
		 (id, assembly_id, part_id, quantity, unit_of_measure, notes, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ap.ID, ap.AssemblyID, ap.PartID, ap.Quantity.String(), ap.UnitOfMeasure, ap.Notes,
		ap.SortOrder, formatTime(ap.CreatedAt), formatTime(ap.UpdatedAt),
	)
	return err
}

func (c conn) ListAssemblyParts(ctx context.Context, assemblyID string) ([]costing.AssemblyPart, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, assembly_id, part_id, quantity, unit_of_measure, notes, sort_order, created_at, updated_at
		 FROM assembly_parts WHERE assembly_id = ? ORDER BY sort_order, created_at`,
		assemblyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []costing.AssemblyPart
	for rows.Next() {
		var ap costing.AssemblyPart
		var quantity, createdAt, updatedAt string
		if err := rows.Scan(&ap.ID, &ap.AssemblyID, &ap.PartID, &quantity, &ap.UnitOfMeasure, &ap.Notes, &ap.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		ap.Quantity = parseDecimal(quantity)
		ap.CreatedAt = parseTime(createdAt)
		ap.UpdatedAt = parseTime(updatedAt)
		parts = append(parts, ap)
	}
	return parts, rows.Err()
}

func (c conn) UpdateAssemblyPartQuantity(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error {
	res, err := c.q.ExecContext(ctx,
		"UPDATE assembly_parts SET quantity = ?, updated_at = ? WHERE id = ?",
		qty.String(), formatTime(at), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &costing.NotFoundError{Kind: "assembly part", ID: id}
	}
	return nil
}

// =============================================================================
// COMPONENTS
// =============================================================================

func (c conn) AddComponent(ctx context.Context, comp costing.Component) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO components
		 (id, estimate_id, part_id, name, description, part_number, manufacturer, unit_price,
		  quantity, unit_of_measure, category, notes, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		comp.ID, comp.EstimateID, nullString(comp.PartID), comp.Name, comp.Description,
		comp.PartNumber, comp.Manufacturer, comp.UnitPrice.String(), comp.Quantity.String(),
		comp.UnitOfMeasure, comp.Category, comp.Notes, comp.SortOrder,
		formatTime(comp.CreatedAt), formatTime(comp.UpdatedAt),
	)
	return err
}

func (c conn) ListComponents(ctx context.Context, estimateID string) ([]costing.Component, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, estimate_id, part_id, name, description, part_number, manufacturer, unit_price,
		        quantity, unit_of_measure, category, notes, sort_order, created_at, updated_at
		 FROM components WHERE estimate_id = ? ORDER BY sort_order, created_at`,
		estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []costing.Component
	for rows.Next() {
		var comp costing.Component
		var partID sql.NullString
		var unitPrice, quantity, createdAt, updatedAt string
		if err := rows.Scan(&comp.ID, &comp.EstimateID, &partID, &comp.Name, &comp.Description,
			&comp.PartNumber, &comp.Manufacturer, &unitPrice, &quantity, &comp.UnitOfMeasure,
			&comp.Category, &comp.Notes, &comp.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		comp.PartID = partID.String
		comp.UnitPrice = parseDecimal(unitPrice)
		comp.Quantity = parseDecimal(quantity)
		comp.CreatedAt = parseTime(createdAt)
		comp.UpdatedAt = parseTime(updatedAt)
		components = append(components, comp)
	}
	return components, rows.Err()
}

// =============================================================================
// CURRENT PRICE (aggregator read)
// =============================================================================

// CurrentPrice resolves a part's live price from the ledger, zero when
// the part is unpriced.
func (c conn) CurrentPrice(ctx context.Context, partID string) (decimal.Decimal, error) {
	var price string
	err := c.q.QueryRowContext(ctx,
		"SELECT new_price FROM parts_price_history WHERE part_id = ? AND is_current = 1",
		partID,
	).Scan(&price)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve current price: %w", err)
	}
	return parseDecimal(price), nil
}
