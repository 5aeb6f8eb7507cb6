package sqlite

import (
	"context"
	"database/sql"

	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/template"
)

// =============================================================================
// STANDARD ASSEMBLIES
// =============================================================================

func (c conn) SaveStandardAssembly(ctx context.Context, sa template.StandardAssembly) error {
	query := `
		INSERT INTO standard_assemblies
		(id, name, assembly_number, description, category_id, base_assembly_id, version,
		 active, template, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			assembly_number = excluded.assembly_number,
			description = excluded.description,
			category_id = excluded.category_id,
			active = excluded.active,
			template = excluded.template,
			updated_at = excluded.updated_at
	`
	_, err := c.q.ExecContext(ctx, query,
		sa.ID, sa.Name, sa.AssemblyNumber, sa.Description, nullString(sa.CategoryID),
		nullString(sa.BaseAssemblyID), sa.Version, sa.Active, sa.Template, sa.CreatedBy,
		formatTime(sa.CreatedAt), formatTime(sa.UpdatedAt),
	)
	return err
}

const standardAssemblyColumns = `id, name, assembly_number, description, category_id, base_assembly_id,
	version, active, template, created_by, created_at, updated_at`

func scanStandardAssembly(row interface{ Scan(...any) error }) (template.StandardAssembly, error) {
	var sa template.StandardAssembly
	var categoryID, baseID sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&sa.ID, &sa.Name, &sa.AssemblyNumber, &sa.Description, &categoryID, &baseID,
		&sa.Version, &sa.Active, &sa.Template, &sa.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return sa, err
	}
	sa.CategoryID = categoryID.String
	sa.BaseAssemblyID = baseID.String
	sa.CreatedAt = parseTime(createdAt)
	sa.UpdatedAt = parseTime(updatedAt)
	return sa, nil
}

func (c conn) GetStandardAssembly(ctx context.Context, id string) (*template.StandardAssembly, error) {
	row := c.q.QueryRowContext(ctx, "SELECT "+standardAssemblyColumns+" FROM standard_assemblies WHERE id = ?", id)
	sa, err := scanStandardAssembly(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (c conn) SetTemplateFlag(ctx context.Context, id string, flag bool) error {
	res, err := c.q.ExecContext(ctx,
		"UPDATE standard_assemblies SET template = ? WHERE id = ?", flag, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &costing.NotFoundError{Kind: "standard assembly", ID: id}
	}
	return nil
}

// ListLineage returns every version sharing the root id, the root
// included, oldest first.
func (c conn) ListLineage(ctx context.Context, rootID string) ([]template.StandardAssembly, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+standardAssemblyColumns+` FROM standard_assemblies
		 WHERE id = ? OR base_assembly_id = ?
		 ORDER BY created_at`,
		rootID, rootID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lineage []template.StandardAssembly
	for rows.Next() {
		sa, err := scanStandardAssembly(rows)
		if err != nil {
			return nil, err
		}
		lineage = append(lineage, sa)
	}
	return lineage, rows.Err()
}

// =============================================================================
// TEMPLATE COMPONENTS
// =============================================================================

func (c conn) AddTemplateComponent(ctx context.Context, comp template.Component) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO standard_assembly_components
		 (id, standard_assembly_id, part_id, quantity, unit_of_measure, notes, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		comp.ID, comp.StandardAssemblyID, comp.PartID, comp.Quantity.String(),
		comp.UnitOfMeasure, comp.Notes, comp.SortOrder,
		formatTime(comp.CreatedAt), formatTime(comp.UpdatedAt),
	)
	return err
}

func (c conn) ListTemplateComponents(ctx context.Context, standardAssemblyID string) ([]template.Component, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, standard_assembly_id, part_id, quantity, unit_of_measure, notes, sort_order, created_at, updated_at
		 FROM standard_assembly_components WHERE standard_assembly_id = ? ORDER BY sort_order, created_at`,
		standardAssemblyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []template.Component
	for rows.Next() {
		var comp template.Component
		var quantity, createdAt, updatedAt string
		if err := rows.Scan(&comp.ID, &comp.StandardAssemblyID, &comp.PartID, &quantity,
			&comp.UnitOfMeasure, &comp.Notes, &comp.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		comp.Quantity = parseDecimal(quantity)
		comp.CreatedAt = parseTime(createdAt)
		comp.UpdatedAt = parseTime(updatedAt)
		components = append(components, comp)
	}
	return components, rows.Err()
}

// ComponentDetails joins a version's components with part identity and
// current ledger prices. Unpriced parts price at zero.
func (c conn) ComponentDetails(ctx context.Context, standardAssemblyID string) ([]template.ComponentDetail, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT sac.part_id, COALESCE(p.part_number, ''), COALESCE(p.description, ''),
		        sac.quantity, COALESCE(ph.new_price, '0'), sac.unit_of_measure, sac.notes
		 FROM standard_assembly_components sac
		 LEFT JOIN parts p ON p.id = sac.part_id
		 LEFT JOIN parts_price_history ph ON ph.part_id = sac.part_id AND ph.is_current = 1
		 WHERE sac.standard_assembly_id = ?
		 ORDER BY sac.sort_order, sac.created_at`,
		standardAssemblyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []template.ComponentDetail
	for rows.Next() {
		var d template.ComponentDetail
		var quantity, unitPrice string
		if err := rows.Scan(&d.PartID, &d.PartNumber, &d.Description, &quantity, &unitPrice,
			&d.UnitOfMeasure, &d.Notes); err != nil {
			return nil, err
		}
		d.Quantity = parseDecimal(quantity)
		d.UnitPrice = parseDecimal(unitPrice)
		details = append(details, d)
	}
	return details, rows.Err()
}

// =============================================================================
// VERSION AUDIT LOG
// =============================================================================

func (c conn) AppendVersionRecord(ctx context.Context, rec template.VersionRecord) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO assembly_version_records
		 (id, standard_assembly_id, version, notes, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StandardAssemblyID, rec.Version, rec.Notes, rec.CreatedBy, formatTime(rec.CreatedAt),
	)
	return err
}

func (c conn) ListVersionRecords(ctx context.Context, standardAssemblyID string) ([]template.VersionRecord, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, standard_assembly_id, version, notes, created_by, created_at
		 FROM assembly_version_records WHERE standard_assembly_id = ? ORDER BY created_at DESC`,
		standardAssemblyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []template.VersionRecord
	for rows.Next() {
		var r template.VersionRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.StandardAssemblyID, &r.Version, &r.Notes, &r.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// ASSEMBLY CATEGORIES
// =============================================================================

func (c conn) SaveAssemblyCategory(ctx context.Context, cat template.AssemblyCategory) error {
	query := `
		INSERT INTO assembly_categories
		(id, code, name, description, sort_order, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			description = excluded.description,
			sort_order = excluded.sort_order,
			active = excluded.active,
			updated_at = excluded.updated_at
	`
	_, err := c.q.ExecContext(ctx, query,
		cat.ID, cat.Code, cat.Name, cat.Description, cat.SortOrder, cat.Active,
		formatTime(cat.CreatedAt), formatTime(cat.UpdatedAt),
	)
	return err
}
