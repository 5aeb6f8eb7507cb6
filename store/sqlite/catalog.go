package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
)

// =============================================================================
// PARTS
// =============================================================================

func (c conn) SavePart(ctx context.Context, p catalog.Part) error {
	query := `
		INSERT INTO parts
		(id, category_id, model, rating, master_item_number, manufacturer, part_number, upc,
		 description, vendor, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category_id = excluded.category_id,
			model = excluded.model,
			rating = excluded.rating,
			master_item_number = excluded.master_item_number,
			manufacturer = excluded.manufacturer,
			part_number = excluded.part_number,
			upc = excluded.upc,
			description = excluded.description,
			vendor = excluded.vendor,
			updated_at = excluded.updated_at
	`
	_, err := c.q.ExecContext(ctx, query,
		p.ID, nullString(p.CategoryID), p.Model, p.Rating, nullString(p.MasterItemNumber),
		p.Manufacturer, p.PartNumber, nullString(p.UPC), p.Description, p.Vendor,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	return err
}

const partColumns = `id, category_id, model, rating, master_item_number, manufacturer, part_number, upc,
	description, vendor, created_at, updated_at`

func scanPart(row interface{ Scan(...any) error }) (catalog.Part, error) {
	var p catalog.Part
	var categoryID, masterItem, upc sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &categoryID, &p.Model, &p.Rating, &masterItem, &p.Manufacturer,
		&p.PartNumber, &upc, &p.Description, &p.Vendor, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.CategoryID = categoryID.String
	p.MasterItemNumber = masterItem.String
	p.UPC = upc.String
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func (c conn) GetPart(ctx context.Context, id string) (*catalog.Part, error) {
	row := c.q.QueryRowContext(ctx, "SELECT "+partColumns+" FROM parts WHERE id = ?", id)
	p, err := scanPart(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPartByIdentifier resolves a part by part number, master item
// number, or UPC, in that priority order.
func (c conn) FindPartByIdentifier(ctx context.Context, identifier string) (*catalog.Part, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+partColumns+` FROM parts
		 WHERE part_number = ? OR master_item_number = ? OR upc = ?
		 ORDER BY CASE
			WHEN part_number = ? THEN 0
			WHEN master_item_number = ? THEN 1
			ELSE 2
		 END
		 LIMIT 1`,
		identifier, identifier, identifier, identifier, identifier)
	p, err := scanPart(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c conn) ListParts(ctx context.Context) ([]catalog.Part, error) {
	rows, err := c.q.QueryContext(ctx, "SELECT "+partColumns+" FROM parts ORDER BY part_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []catalog.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (c conn) TouchPart(ctx context.Context, partID string, at time.Time) error {
	res, err := c.q.ExecContext(ctx,
		"UPDATE parts SET updated_at = ? WHERE id = ?", formatTime(at), partID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &costing.NotFoundError{Kind: "part", ID: partID}
	}
	return nil
}

// =============================================================================
// PART CATEGORIES
// =============================================================================

// GetOrCreatePartCategory resolves a category by name, creating it on
// first use. A blank name resolves to no category.
func (c conn) GetOrCreatePartCategory(ctx context.Context, name string) (*catalog.PartCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var cat catalog.PartCategory
	var createdAt, updatedAt string
	err := c.q.QueryRowContext(ctx,
		"SELECT id, name, description, active, created_at, updated_at FROM part_categories WHERE name = ?",
		name,
	).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Active, &createdAt, &updatedAt)
	if err == nil {
		cat.CreatedAt = parseTime(createdAt)
		cat.UpdatedAt = parseTime(updatedAt)
		return &cat, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now().UTC()
	cat = catalog.PartCategory{
		ID:        uuid.NewString(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = c.q.ExecContext(ctx,
		"INSERT INTO part_categories (id, name, description, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		cat.ID, cat.Name, cat.Description, cat.Active, formatTime(now), formatTime(now))
	if isUniqueConstraintError(err) {
		// Lost a create race; the row exists now.
		return c.GetOrCreatePartCategory(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// =============================================================================
// PRICE LEDGER
// =============================================================================

const priceRecordColumns = `id, part_id, old_price, new_price, changed_at, reason, source, effective_date, is_current`

func scanPriceRecord(row interface{ Scan(...any) error }) (catalog.PriceRecord, error) {
	var r catalog.PriceRecord
	var oldPrice sql.NullString
	var newPrice, changedAt string
	var effectiveDate sql.NullString
	err := row.Scan(&r.ID, &r.PartID, &oldPrice, &newPrice, &changedAt, &r.Reason, &r.Source, &effectiveDate, &r.Current)
	if err != nil {
		return r, err
	}
	r.OldPrice = scanNullDecimal(oldPrice)
	r.NewPrice = parseDecimal(newPrice)
	r.ChangedAt = parseTime(changedAt)
	if effectiveDate.Valid {
		r.EffectiveDate = parseTime(effectiveDate.String)
	}
	return r, nil
}

func (c conn) CurrentPriceRecord(ctx context.Context, partID string) (*catalog.PriceRecord, error) {
	row := c.q.QueryRowContext(ctx,
		"SELECT "+priceRecordColumns+" FROM parts_price_history WHERE part_id = ? AND is_current = 1",
		partID)
	r, err := scanPriceRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c conn) PriceHistory(ctx context.Context, partID string, limit int) ([]catalog.PriceRecord, error) {
	query := "SELECT " + priceRecordColumns + " FROM parts_price_history WHERE part_id = ? ORDER BY changed_at DESC"
	args := []any{partID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []catalog.PriceRecord
	for rows.Next() {
		r, err := scanPriceRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ClearCurrentPrice drops the current flag from the part's ledger. The
// flag moves, the rows stay: this is the only UPDATE the ledger sees.
func (c conn) ClearCurrentPrice(ctx context.Context, partID string) error {
	_, err := c.q.ExecContext(ctx,
		"UPDATE parts_price_history SET is_current = 0 WHERE part_id = ? AND is_current = 1",
		partID)
	return err
}

func (c conn) AppendPriceRecord(ctx context.Context, rec catalog.PriceRecord) error {
	var effectiveDate sql.NullString
	if !rec.EffectiveDate.IsZero() {
		effectiveDate = sql.NullString{String: formatTime(rec.EffectiveDate), Valid: true}
	}
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO parts_price_history
		 (id, part_id, old_price, new_price, changed_at, reason, source, effective_date, is_current)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PartID, nullDecimal(rec.OldPrice), rec.NewPrice.String(),
		formatTime(rec.ChangedAt), rec.Reason, rec.Source, effectiveDate, rec.Current,
	)
	if isUniqueConstraintError(err) {
		// idx_price_history_current: a concurrent writer holds the flag.
		return costing.ErrConflict
	}
	return err
}
