// Package memory provides an in-memory implementation of every
// repository interface, for tests and development. Transactions are
// simulated with a full snapshot + restore on error, mirroring the
// rollback semantics of the SQLite store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/motor"
	"github.com/voltworks/estimator/template"
)

// Store holds everything in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	projects          map[string]costing.Project
	estimates         map[string]costing.Estimate
	assemblies        map[string]costing.Assembly
	assemblyParts     map[string]costing.AssemblyPart
	components        map[string]costing.Component
	estimateRevisions []costing.EstimateRevision

	parts          map[string]catalog.Part
	partCategories map[string]catalog.PartCategory
	priceRecords   []catalog.PriceRecord

	standardAssemblies map[string]template.StandardAssembly
	templateComponents map[string]template.Component
	versionRecords     []template.VersionRecord
	assemblyCategories map[string]template.AssemblyCategory

	motors    map[string]motor.Motor
	snapshots []motor.Snapshot
	necAmps   map[necKey]decimal.Decimal
}

type necKey struct {
	HP      string
	Voltage int
}

func New() *Store {
	return &Store{
		projects:           make(map[string]costing.Project),
		estimates:          make(map[string]costing.Estimate),
		assemblies:         make(map[string]costing.Assembly),
		assemblyParts:      make(map[string]costing.AssemblyPart),
		components:         make(map[string]costing.Component),
		parts:              make(map[string]catalog.Part),
		partCategories:     make(map[string]catalog.PartCategory),
		standardAssemblies: make(map[string]template.StandardAssembly),
		templateComponents: make(map[string]template.Component),
		assemblyCategories: make(map[string]template.AssemblyCategory),
		motors:             make(map[string]motor.Motor),
		necAmps:            make(map[necKey]decimal.Decimal),
	}
}

// =============================================================================
// TRANSACTIONAL VIEWS
// =============================================================================
// Each domain interface wants its own WithTx signature, so the Store
// hands out thin views. A view shares the Store's data and adds
// snapshot/rollback transaction semantics.

func (s *Store) Catalog() catalog.TxStore { return &catalogView{s} }

func (s *Store) Templates() template.TxStore { return &templateView{s} }

func (s *Store) Motors() motor.TxStore { return &motorView{s} }

// Costing returns the aggregator's read surface.
func (s *Store) Costing() costing.Store { return s }

type catalogView struct{ *Store }

func (v *catalogView) WithTx(ctx context.Context, fn func(catalog.Store) error) error {
	return v.withTx(func() error { return fn(v) })
}

type templateView struct{ *Store }

func (v *templateView) WithTx(ctx context.Context, fn func(template.Store) error) error {
	return v.withTx(func() error { return fn(v) })
}

type motorView struct{ *Store }

func (v *motorView) WithTx(ctx context.Context, fn func(motor.Store) error) error {
	return v.withTx(func() error { return fn(v) })
}

func (s *Store) withTx(fn func() error) error {
	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type stateSnapshot struct {
	projects           map[string]costing.Project
	estimates          map[string]costing.Estimate
	assemblies         map[string]costing.Assembly
	assemblyParts      map[string]costing.AssemblyPart
	components         map[string]costing.Component
	estimateRevisions  []costing.EstimateRevision
	parts              map[string]catalog.Part
	partCategories     map[string]catalog.PartCategory
	priceRecords       []catalog.PriceRecord
	standardAssemblies map[string]template.StandardAssembly
	templateComponents map[string]template.Component
	versionRecords     []template.VersionRecord
	assemblyCategories map[string]template.AssemblyCategory
	motors             map[string]motor.Motor
	snapshots          []motor.Snapshot
}

func (s *Store) snapshot() stateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stateSnapshot{
		projects:           copyMap(s.projects),
		estimates:          copyMap(s.estimates),
		assemblies:         copyMap(s.assemblies),
		assemblyParts:      copyMap(s.assemblyParts),
		components:         copyMap(s.components),
		estimateRevisions:  append([]costing.EstimateRevision(nil), s.estimateRevisions...),
		parts:              copyMap(s.parts),
		partCategories:     copyMap(s.partCategories),
		priceRecords:       append([]catalog.PriceRecord(nil), s.priceRecords...),
		standardAssemblies: copyMap(s.standardAssemblies),
		templateComponents: copyMap(s.templateComponents),
		versionRecords:     append([]template.VersionRecord(nil), s.versionRecords...),
		assemblyCategories: copyMap(s.assemblyCategories),
		motors:             copyMap(s.motors),
		snapshots:          append([]motor.Snapshot(nil), s.snapshots...),
	}
}

func (s *Store) restore(snap stateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = snap.projects
	s.estimates = snap.estimates
	s.assemblies = snap.assemblies
	s.assemblyParts = snap.assemblyParts
	s.components = snap.components
	s.estimateRevisions = snap.estimateRevisions
	s.parts = snap.parts
	s.partCategories = snap.partCategories
	s.priceRecords = snap.priceRecords
	s.standardAssemblies = snap.standardAssemblies
	s.templateComponents = snap.templateComponents
	s.versionRecords = snap.versionRecords
	s.assemblyCategories = snap.assemblyCategories
	s.motors = snap.motors
	s.snapshots = snap.snapshots
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// =============================================================================
// COSTING STORE
// =============================================================================

func (s *Store) SaveProject(_ context.Context, p costing.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	return nil
}

func (s *Store) GetProject(_ context.Context, id string) (*costing.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.projects[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) ListProjects(_ context.Context) ([]costing.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []costing.Project
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	// Cascade: estimates, their assemblies/components, and motors.
	for eid, est := range s.estimates {
		if est.ProjectID == id {
			s.deleteEstimateLocked(eid)
		}
	}
	for mid, m := range s.motors {
		if m.ProjectID == id {
			delete(s.motors, mid)
		}
	}
	return nil
}

func (s *Store) SaveEstimate(_ context.Context, e costing.Estimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimates[e.ID] = e
	return nil
}

func (s *Store) GetEstimate(_ context.Context, id string) (*costing.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.estimates[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *Store) ListEstimates(_ context.Context, projectID string) ([]costing.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []costing.Estimate
	for _, e := range s.estimates {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Store) DeleteEstimate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteEstimateLocked(id)
	return nil
}

func (s *Store) deleteEstimateLocked(id string) {
	delete(s.estimates, id)
	for aid, a := range s.assemblies {
		if a.EstimateID == id {
			delete(s.assemblies, aid)
			for pid, ap := range s.assemblyParts {
				if ap.AssemblyID == aid {
					delete(s.assemblyParts, pid)
				}
			}
		}
	}
	for cid, c := range s.components {
		if c.EstimateID == id {
			delete(s.components, cid)
		}
	}
}

func (s *Store) UpdateEstimateRevision(_ context.Context, estimateID string, revisionNumber int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.estimates[estimateID]
	if !ok {
		return &costing.NotFoundError{Kind: "estimate", ID: estimateID}
	}
	e.RevisionNumber = revisionNumber
	e.UpdatedAt = at
	s.estimates[estimateID] = e
	return nil
}

func (s *Store) AppendEstimateRevision(_ context.Context, rev costing.EstimateRevision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimateRevisions = append(s.estimateRevisions, rev)
	return nil
}

func (s *Store) ListEstimateRevisions(_ context.Context, estimateID string) ([]costing.EstimateRevision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []costing.EstimateRevision
	for _, r := range s.estimateRevisions {
		if r.EstimateID == estimateID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RevisionNumber > out[j].RevisionNumber })
	return out, nil
}

func (s *Store) CreateAssembly(_ context.Context, a costing.Assembly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assemblies[a.ID] = a
	return nil
}

func (s *Store) GetAssembly(_ context.Context, id string) (*costing.Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.assemblies[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *Store) ListAssemblies(_ context.Context, estimateID string) ([]costing.Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []costing.Assembly
	for _, a := range s.assemblies {
		if a.EstimateID == estimateID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Store) NextAssemblySortOrder(_ context.Context, estimateID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, a := range s.assemblies {
		if a.EstimateID == estimateID && a.SortOrder > max {
			max = a.SortOrder
		}
	}
	return max + 1, nil
}

func (s *Store) SetAssemblyTemplate(_ context.Context, assemblyID, templateID, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assemblies[assemblyID]
	if !ok {
		return &costing.NotFoundError{Kind: "assembly", ID: assemblyID}
	}
	a.TemplateID = templateID
	a.TemplateVersion = version
	s.assemblies[assemblyID] = a
	return nil
}

func (s *Store) AddAssemblyPart(_ context.Context, ap costing.AssemblyPart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assemblyParts[ap.ID] = ap
	return nil
}

func (s *Store) ListAssemblyParts(_ context.Context, assemblyID string) ([]costing.AssemblyPart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []costing.AssemblyPart
	for _, ap := range s.assemblyParts {
		if ap.AssemblyID == assemblyID {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Store) UpdateAssemblyPartQuantity(_ context.Context, id string, qty decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.assemblyParts[id]
	if !ok {
		return &costing.NotFoundError{Kind: "assembly part", ID: id}
	}
	ap.Quantity = qty
	ap.UpdatedAt = at
	s.assemblyParts[id] = ap
	return nil
}

func (s *Store) AddComponent(_ context.Context, c costing.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components[c.ID] = c
	return nil
}

func (s *Store) ListComponents(_ context.Context, estimateID string) ([]costing.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []costing.Component
	for _, c := range s.components {
		if c.EstimateID == estimateID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// CurrentPrice resolves a part's live price from the ledger, zero when
// the part is unpriced.
func (s *Store) CurrentPrice(ctx context.Context, partID string) (decimal.Decimal, error) {
	rec, err := s.CurrentPriceRecord(ctx, partID)
	if err != nil {
		return decimal.Zero, err
	}
	if rec == nil {
		return decimal.Zero, nil
	}
	return rec.NewPrice, nil
}

// =============================================================================
// CATALOG STORE
// =============================================================================

func (s *Store) SavePart(_ context.Context, p catalog.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts[p.ID] = p
	return nil
}

func (s *Store) GetPart(_ context.Context, id string) (*catalog.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.parts[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) FindPartByIdentifier(_ context.Context, identifier string) (*catalog.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Priority order: part number, master item number, UPC.
	match := func(get func(catalog.Part) string) *catalog.Part {
		for _, p := range s.parts {
			if get(p) == identifier {
				return &p
			}
		}
		return nil
	}
	if p := match(func(p catalog.Part) string { return p.PartNumber }); p != nil {
		return p, nil
	}
	if p := match(func(p catalog.Part) string { return p.MasterItemNumber }); p != nil {
		return p, nil
	}
	return match(func(p catalog.Part) string { return p.UPC }), nil
}

func (s *Store) ListParts(_ context.Context) ([]catalog.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Part
	for _, p := range s.parts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out, nil
}

func (s *Store) GetOrCreatePartCategory(_ context.Context, name string) (*catalog.PartCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.partCategories {
		if c.Name == name {
			return &c, nil
		}
	}
	c := catalog.PartCategory{
		ID:        "cat-" + name,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	s.partCategories[c.ID] = c
	return &c, nil
}

func (s *Store) CurrentPriceRecord(_ context.Context, partID string) (*catalog.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.priceRecords) - 1; i >= 0; i-- {
		r := s.priceRecords[i]
		if r.PartID == partID && r.Current {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *Store) PriceHistory(_ context.Context, partID string, limit int) ([]catalog.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.PriceRecord
	for _, r := range s.priceRecords {
		if r.PartID == partID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChangedAt.After(out[j].ChangedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ClearCurrentPrice(_ context.Context, partID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.priceRecords {
		if s.priceRecords[i].PartID == partID {
			s.priceRecords[i].Current = false
		}
	}
	return nil
}

func (s *Store) AppendPriceRecord(_ context.Context, rec catalog.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Current {
		for _, r := range s.priceRecords {
			if r.PartID == rec.PartID && r.Current {
				return costing.ErrConflict
			}
		}
	}
	s.priceRecords = append(s.priceRecords, rec)
	return nil
}

func (s *Store) TouchPart(_ context.Context, partID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[partID]
	if !ok {
		return &costing.NotFoundError{Kind: "part", ID: partID}
	}
	p.UpdatedAt = at
	s.parts[partID] = p
	return nil
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

func (s *Store) SaveStandardAssembly(_ context.Context, sa template.StandardAssembly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.standardAssemblies[sa.ID] = sa
	return nil
}

func (s *Store) GetStandardAssembly(_ context.Context, id string) (*template.StandardAssembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sa, ok := s.standardAssemblies[id]; ok {
		return &sa, nil
	}
	return nil, nil
}

func (s *Store) SetTemplateFlag(_ context.Context, id string, flag bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sa, ok := s.standardAssemblies[id]
	if !ok {
		return &costing.NotFoundError{Kind: "standard assembly", ID: id}
	}
	sa.Template = flag
	s.standardAssemblies[id] = sa
	return nil
}

func (s *Store) ListLineage(_ context.Context, rootID string) ([]template.StandardAssembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []template.StandardAssembly
	for _, sa := range s.standardAssemblies {
		if sa.ID == rootID || sa.BaseAssemblyID == rootID {
			out = append(out, sa)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListTemplateComponents(_ context.Context, standardAssemblyID string) ([]template.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []template.Component
	for _, c := range s.templateComponents {
		if c.StandardAssemblyID == standardAssemblyID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Store) AddTemplateComponent(_ context.Context, c template.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templateComponents[c.ID] = c
	return nil
}

func (s *Store) AppendVersionRecord(_ context.Context, rec template.VersionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versionRecords = append(s.versionRecords, rec)
	return nil
}

func (s *Store) ListVersionRecords(_ context.Context, standardAssemblyID string) ([]template.VersionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []template.VersionRecord
	for _, r := range s.versionRecords {
		if r.StandardAssemblyID == standardAssemblyID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ComponentDetails(ctx context.Context, standardAssemblyID string) ([]template.ComponentDetail, error) {
	components, err := s.ListTemplateComponents(ctx, standardAssemblyID)
	if err != nil {
		return nil, err
	}
	out := make([]template.ComponentDetail, 0, len(components))
	for _, c := range components {
		detail := template.ComponentDetail{
			PartID:        c.PartID,
			Quantity:      c.Quantity,
			UnitOfMeasure: c.UnitOfMeasure,
			Notes:         c.Notes,
		}
		if p, err := s.GetPart(ctx, c.PartID); err == nil && p != nil {
			detail.PartNumber = p.PartNumber
			detail.Description = p.Description
		}
		price, err := s.CurrentPrice(ctx, c.PartID)
		if err != nil {
			return nil, err
		}
		detail.UnitPrice = price
		out = append(out, detail)
	}
	return out, nil
}

func (s *Store) SaveAssemblyCategory(_ context.Context, c template.AssemblyCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assemblyCategories[c.ID] = c
	return nil
}

// =============================================================================
// MOTOR STORE
// =============================================================================

func (s *Store) SaveMotor(_ context.Context, m motor.Motor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motors[m.ID] = m
	return nil
}

func (s *Store) UpdateMotor(_ context.Context, m motor.Motor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.motors[m.ID]; !ok {
		return &costing.NotFoundError{Kind: "motor", ID: m.ID}
	}
	s.motors[m.ID] = m
	return nil
}

func (s *Store) GetMotor(_ context.Context, id string) (*motor.Motor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.motors[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (s *Store) ListMotors(_ context.Context, projectID string) ([]motor.Motor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []motor.Motor
	for _, m := range s.motors {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Store) AppendSnapshot(_ context.Context, snap motor.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)
	return nil
}

// GetSnapshot returns the newest snapshot tagged with the revision.
func (s *Store) GetSnapshot(_ context.Context, motorID string, rev motor.Revision) (*motor.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		snap := s.snapshots[i]
		if snap.MotorID == motorID && snap.Revision == rev {
			return &snap, nil
		}
	}
	return nil, nil
}

func (s *Store) ListSnapshots(_ context.Context, motorID string) ([]motor.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []motor.Snapshot
	for _, snap := range s.snapshots {
		if snap.MotorID == motorID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Revision.Less(out[i].Revision) })
	return out, nil
}

// SeedNECAmps loads one NEC full-load current row (test/seed helper).
func (s *Store) SeedNECAmps(hp decimal.Decimal, voltage int, amps decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.necAmps[necKey{HP: hp.String(), Voltage: voltage}] = amps
}

func (s *Store) NECFullLoadAmps(_ context.Context, hp decimal.Decimal, voltage int) (*decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if amps, ok := s.necAmps[necKey{HP: hp.String(), Voltage: voltage}]; ok {
		return &amps, nil
	}
	return nil, nil
}
