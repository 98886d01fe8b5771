// Package wizard is the multi-step entry state machine. One machine owns one
// draft; every mutation goes through the machine and is immediately followed
// by a full derivation pass, so callers never observe stale derived values.
package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledgerdesk/internal/config"
	"ledgerdesk/internal/derive"
	"ledgerdesk/internal/domain"
	"ledgerdesk/internal/store"
	"ledgerdesk/internal/submit"
	"ledgerdesk/internal/validate"
)

// ErrInvalidStep marks a navigation action the current position does not
// allow (previous from the first step, next from review, submit elsewhere
// than review, jump to an unknown step).
var ErrInvalidStep = errors.New("invalid step")

// Machine governs step sequencing for one draft, from open to submit or
// discard. Single-owner and synchronous: no other writer touches the draft.
type Machine struct {
	cfg   *config.Config
	draft domain.Draft
	items *store.Store
	rates derive.Rates
	Now   func() time.Time
}

// New opens a fresh draft of the given kind at the basic step.
func New(kind domain.Kind, cfg *config.Config) (*Machine, error) {
	if !domain.ValidKind(kind) {
		return nil, fmt.Errorf("workflow kind %q: %w", kind, domain.ErrInvalidInput)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	m := &Machine{
		cfg:   cfg,
		items: store.New(),
		rates: derive.Rates{TaxRate: cfg.TaxRate(), Places: cfg.Rounding.Places},
		Now:   time.Now,
	}
	m.draft = m.emptyDraft(kind)
	m.recompute()
	return m, nil
}

func (m *Machine) emptyDraft(kind domain.Kind) domain.Draft {
	d := domain.Draft{
		ID:        uuid.New().String(),
		Kind:      kind,
		Step:      domain.StepBasic,
		CreatedAt: m.now().UTC().Format(time.RFC3339),
	}
	if kind == domain.KindAsset {
		d.Asset.Method = domain.Method(m.cfg.Depreciation.DefaultMethod)
	}
	return d
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// recompute runs the full derivation pass. Called after every successful
// mutation; outside of mutations it is idempotent.
func (m *Machine) recompute() {
	m.draft.Items = m.items.Items()
	derive.All(&m.draft, m.rates)
	m.items.SetLineTotals(m.draft.Items)
}

// Draft returns a snapshot copy of the current draft, derived values
// included.
func (m *Machine) Draft() domain.Draft {
	d := m.draft
	d.Items = append([]domain.LineItem(nil), m.draft.Items...)
	d.Schedule = append([]domain.ScheduleEntry(nil), m.draft.Schedule...)
	return d
}

// Step returns the current wizard position.
func (m *Machine) Step() domain.Step { return m.draft.Step }

// Next advances one step. Review is terminal for forward movement.
func (m *Machine) Next() error {
	idx := domain.StepIndex(m.draft.Step)
	steps := domain.Steps()
	if idx < 0 || idx+1 >= len(steps) {
		return fmt.Errorf("next from %s: %w", m.draft.Step, ErrInvalidStep)
	}
	m.draft.Step = steps[idx+1]
	return nil
}

// Previous moves back one step.
func (m *Machine) Previous() error {
	idx := domain.StepIndex(m.draft.Step)
	if idx <= 0 {
		return fmt.Errorf("previous from %s: %w", m.draft.Step, ErrInvalidStep)
	}
	m.draft.Step = domain.Steps()[idx-1]
	return nil
}

// Jump moves directly to any step, mirroring tab selection in the entry
// dialogs. Jumping is never gated on completeness.
func (m *Machine) Jump(step domain.Step) error {
	if domain.StepIndex(step) < 0 {
		return fmt.Errorf("jump to %q: %w", step, ErrInvalidStep)
	}
	m.draft.Step = step
	return nil
}

// Reset discards all input and returns the draft to its initial empty form
// at the basic step. The draft keeps its identity; item ids are never reused.
func (m *Machine) Reset() {
	id := m.draft.ID
	createdAt := m.draft.CreatedAt
	m.items.Reset()
	m.draft = m.emptyDraft(m.draft.Kind)
	m.draft.ID = id
	m.draft.CreatedAt = createdAt
	m.recompute()
}

// AssetFieldOptions is a partial update of asset draft fields; nil fields are
// left untouched.
type AssetFieldOptions struct {
	Name            *string
	CategoryID      *string
	SerialNumber    *string
	PurchaseDate    *string
	Cost            *decimal.Decimal
	SalvageValue    *decimal.Decimal
	UsefulLifeYears *int
	Method          *domain.Method
	Location        *string
	CustodianID     *string
}

// SetAssetFields applies a partial update to an asset draft and recomputes.
// Negative amounts, a negative life, and unknown methods fail with
// ErrInvalidValue and leave the draft unchanged; an inconsistent salvage/cost
// pair is accepted mid-edit and surfaces through the validation gate instead.
func (m *Machine) SetAssetFields(opts AssetFieldOptions) error {
	if m.draft.Kind != domain.KindAsset {
		return fmt.Errorf("asset fields on %s draft: %w", m.draft.Kind, domain.ErrInvalidInput)
	}
	if opts.Cost != nil && opts.Cost.IsNegative() {
		return domain.InvalidValue("cost")
	}
	if opts.SalvageValue != nil && opts.SalvageValue.IsNegative() {
		return domain.InvalidValue("salvage_value")
	}
	if opts.UsefulLifeYears != nil && (*opts.UsefulLifeYears < 0 || *opts.UsefulLifeYears > m.cfg.Depreciation.MaxLifeYears) {
		return domain.InvalidValue("useful_life_years")
	}
	if opts.Method != nil && !domain.ValidMethod(*opts.Method) {
		return domain.InvalidValue("method")
	}
	a := &m.draft.Asset
	setString(&a.Name, opts.Name)
	setString(&a.CategoryID, opts.CategoryID)
	setString(&a.SerialNumber, opts.SerialNumber)
	setString(&a.PurchaseDate, opts.PurchaseDate)
	if opts.Cost != nil {
		a.Cost = *opts.Cost
	}
	if opts.SalvageValue != nil {
		a.SalvageValue = *opts.SalvageValue
	}
	if opts.UsefulLifeYears != nil {
		a.UsefulLifeYears = *opts.UsefulLifeYears
	}
	if opts.Method != nil {
		a.Method = *opts.Method
	}
	setString(&a.Location, opts.Location)
	setString(&a.CustodianID, opts.CustodianID)
	m.recompute()
	return nil
}

// PayrollFieldOptions is a partial update of payroll draft fields.
type PayrollFieldOptions struct {
	RunName     *string
	PeriodStart *string
	PeriodEnd   *string
	PayDate     *string
	ApproverID  *string
	Notes       *string
}

// SetPayrollFields applies a partial update to a payroll draft and recomputes.
func (m *Machine) SetPayrollFields(opts PayrollFieldOptions) error {
	if m.draft.Kind != domain.KindPayroll {
		return fmt.Errorf("payroll fields on %s draft: %w", m.draft.Kind, domain.ErrInvalidInput)
	}
	p := &m.draft.Payroll
	setString(&p.RunName, opts.RunName)
	setString(&p.PeriodStart, opts.PeriodStart)
	setString(&p.PeriodEnd, opts.PeriodEnd)
	setString(&p.PayDate, opts.PayDate)
	setString(&p.ApproverID, opts.ApproverID)
	setString(&p.Notes, opts.Notes)
	m.recompute()
	return nil
}

// ProcurementFieldOptions is a partial update of procurement draft fields.
type ProcurementFieldOptions struct {
	Department   *string
	Priority     *string
	OrderDate    *string
	RequiredDate *string
	VendorID     *string
	ShipTo       *string
	Notes        *string
}

// SetProcurementFields applies a partial update to a procurement draft and
// recomputes.
func (m *Machine) SetProcurementFields(opts ProcurementFieldOptions) error {
	if m.draft.Kind != domain.KindProcurement {
		return fmt.Errorf("procurement fields on %s draft: %w", m.draft.Kind, domain.ErrInvalidInput)
	}
	p := &m.draft.Procurement
	setString(&p.Department, opts.Department)
	setString(&p.Priority, opts.Priority)
	setString(&p.OrderDate, opts.OrderDate)
	setString(&p.RequiredDate, opts.RequiredDate)
	setString(&p.VendorID, opts.VendorID)
	setString(&p.ShipTo, opts.ShipTo)
	setString(&p.Notes, opts.Notes)
	m.recompute()
	return nil
}

// AddItem appends a line item and recomputes. Payroll entries always count
// one employee, so a quantity other than one is rejected there.
func (m *Machine) AddItem(opts store.AddOptions) (domain.LineItem, error) {
	if m.draft.Kind == domain.KindAsset {
		return domain.LineItem{}, fmt.Errorf("line items on asset draft: %w", domain.ErrInvalidInput)
	}
	if m.draft.Kind == domain.KindPayroll && opts.Quantity != nil && *opts.Quantity != 1 {
		return domain.LineItem{}, domain.InvalidValue("quantity")
	}
	it, err := m.items.Add(opts)
	if err != nil {
		return domain.LineItem{}, err
	}
	m.recompute()
	fresh, _ := m.items.Get(it.ID)
	return fresh, nil
}

// UpdateItem applies a partial item update and recomputes.
func (m *Machine) UpdateItem(id string, opts store.UpdateOptions) (domain.LineItem, error) {
	if m.draft.Kind == domain.KindPayroll && opts.Quantity != nil && *opts.Quantity != 1 {
		return domain.LineItem{}, domain.InvalidValue("quantity")
	}
	if _, err := m.items.Update(id, opts); err != nil {
		return domain.LineItem{}, err
	}
	m.recompute()
	return m.items.Get(id)
}

// RemoveItem deletes a line item and recomputes.
func (m *Machine) RemoveItem(id string) error {
	if err := m.items.Remove(id); err != nil {
		return err
	}
	m.recompute()
	return nil
}

// Validation returns the advisory gate report for the current draft.
func (m *Machine) Validation() validate.Report {
	d := m.Draft()
	return validate.Check(m.cfg, &d)
}

// Submit hands back the immutable snapshot payload. Only reachable from the
// review step; completeness is advisory and never checked here. The caller
// discards the machine afterwards.
func (m *Machine) Submit() (submit.Payload, error) {
	if m.draft.Step != domain.StepReview {
		return submit.Payload{}, fmt.Errorf("submit from %s: %w", m.draft.Step, ErrInvalidStep)
	}
	return submit.Snapshot(m.Draft(), m.now()), nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
