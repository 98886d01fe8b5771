// Package derive recomputes every dependent field of a draft from its
// primitive state. All functions are pure and deterministic: the same inputs
// always produce the same derived values, and deriving twice in a row without
// an intervening mutation is a no-op.
package derive

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ledgerdesk/internal/domain"
)

// Rates carries the draft-level derivation parameters.
type Rates struct {
	// TaxRate is the single fixed rate applied to procurement subtotals.
	TaxRate decimal.Decimal
	// Places is the rounding precision for derived money values.
	Places int32
}

// DefaultRates returns the stock 8% tax rate with 2-place rounding.
func DefaultRates() Rates {
	return Rates{
		TaxRate: decimal.New(8, -2),
		Places:  2,
	}
}

var twelve = decimal.NewFromInt(12)

// LineTotal computes the derived total of a single line item:
//
//	quantity * rate + overtime + bonuses - deductions
//
// For procurement items the adjustments are zero, leaving qty * unitPrice.
// For payroll entries the quantity is one, leaving net pay. The result may be
// negative when deductions exceed the other components; that is a caller
// concern, not a computation failure.
func LineTotal(it domain.LineItem, places int32) decimal.Decimal {
	qty := decimal.NewFromInt(it.Quantity)
	return qty.Mul(it.Rate).
		Add(it.Overtime).
		Add(it.Bonuses).
		Sub(it.Deductions).
		Round(places)
}

// Totals folds the item collection into aggregate totals for the given
// workflow kind. Items are expected to already carry fresh LineTotal values.
func Totals(kind domain.Kind, items []domain.LineItem, r Rates) domain.AggregateTotals {
	var t domain.AggregateTotals
	t.Subtotal = decimal.Zero
	t.Tax = decimal.Zero
	t.Total = decimal.Zero
	t.BaseSalary = decimal.Zero
	t.Overtime = decimal.Zero
	t.Bonuses = decimal.Zero
	t.Deductions = decimal.Zero
	t.NetPay = decimal.Zero
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(it.LineTotal)
		t.BaseSalary = t.BaseSalary.Add(it.Rate)
		t.Overtime = t.Overtime.Add(it.Overtime)
		t.Bonuses = t.Bonuses.Add(it.Bonuses)
		t.Deductions = t.Deductions.Add(it.Deductions)
		t.NetPay = t.NetPay.Add(it.LineTotal)
	}
	if kind == domain.KindProcurement {
		t.Tax = t.Subtotal.Mul(r.TaxRate).Round(r.Places)
	}
	t.Total = t.Subtotal.Add(t.Tax)
	return t
}

// Annual returns the per-year straight-line depreciation amount, unrounded.
func Annual(cost, salvage decimal.Decimal, lifeYears int) (decimal.Decimal, error) {
	if err := checkScheduleInputs(cost, salvage, lifeYears); err != nil {
		return decimal.Zero, err
	}
	return cost.Sub(salvage).Div(decimal.NewFromInt(int64(lifeYears))), nil
}

// Monthly returns the per-month straight-line depreciation amount, unrounded.
func Monthly(cost, salvage decimal.Decimal, lifeYears int) (decimal.Decimal, error) {
	annual, err := Annual(cost, salvage, lifeYears)
	if err != nil {
		return decimal.Zero, err
	}
	return annual.Div(twelve), nil
}

// Schedule generates the full periodic depreciation schedule. For every
// method the invariants hold exactly:
//
//	closing[i]  = opening[i] - depreciation[i]
//	opening[i+1] = closing[i]
//	closing[N]  = salvage
//
// Intermediate periods round to the requested places; the final period
// absorbs the rounding remainder so the schedule never drifts away from the
// salvage value.
func Schedule(cost, salvage decimal.Decimal, lifeYears int, method domain.Method, places int32) ([]domain.ScheduleEntry, error) {
	if err := checkScheduleInputs(cost, salvage, lifeYears); err != nil {
		return nil, err
	}
	if !domain.ValidMethod(method) {
		return nil, fmt.Errorf("depreciation method %q: %w", method, domain.ErrInvalidInput)
	}

	depreciable := cost.Sub(salvage)
	life := decimal.NewFromInt(int64(lifeYears))
	entries := make([]domain.ScheduleEntry, 0, lifeYears)
	opening := cost
	accumulated := decimal.Zero

	for i := 1; i <= lifeYears; i++ {
		var dep decimal.Decimal
		switch method {
		case domain.MethodStraightLine:
			dep = depreciable.Div(life).Round(places)
		case domain.MethodDecliningBalance:
			// double-declining rate 2/N against the opening book value
			dep = opening.Mul(decimal.NewFromInt(2)).Div(life).Round(places)
		case domain.MethodSumOfYears:
			digits := decimal.NewFromInt(int64(lifeYears * (lifeYears + 1) / 2))
			factor := decimal.NewFromInt(int64(lifeYears - i + 1))
			dep = depreciable.Mul(factor).Div(digits).Round(places)
		}
		remaining := opening.Sub(salvage)
		if i == lifeYears || dep.GreaterThan(remaining) {
			dep = remaining
		}
		closing := opening.Sub(dep)
		accumulated = accumulated.Add(dep)
		entries = append(entries, domain.ScheduleEntry{
			Period:                  i,
			OpeningValue:            opening,
			PeriodDepreciation:      dep,
			ClosingValue:            closing,
			AccumulatedDepreciation: accumulated,
		})
		opening = closing
	}
	return entries, nil
}

func checkScheduleInputs(cost, salvage decimal.Decimal, lifeYears int) error {
	if lifeYears <= 0 {
		return fmt.Errorf("useful life %d years: %w", lifeYears, domain.ErrInvalidInput)
	}
	if cost.IsNegative() {
		return domain.InvalidValue("cost")
	}
	if salvage.IsNegative() {
		return domain.InvalidValue("salvage_value")
	}
	if salvage.GreaterThan(cost) {
		return fmt.Errorf("salvage above cost: %w", domain.ErrInvalidValue)
	}
	return nil
}

// ScheduleReady reports whether an asset draft carries enough consistent
// input to generate a schedule. While a draft is half-filled the wizard keeps
// recomputing without error; the schedule simply stays empty until the inputs
// make sense.
func ScheduleReady(a domain.AssetFields) bool {
	if a.UsefulLifeYears < 1 {
		return false
	}
	if !a.Cost.IsPositive() {
		return false
	}
	if a.SalvageValue.IsNegative() || a.SalvageValue.GreaterThan(a.Cost) {
		return false
	}
	return domain.ValidMethod(a.Method)
}

// All refreshes every derived field of the draft in place: item line totals,
// aggregate totals, and (for asset drafts) the depreciation schedule. It is
// the one recompute pass the wizard runs after each mutation.
func All(d *domain.Draft, r Rates) {
	for i := range d.Items {
		d.Items[i].LineTotal = LineTotal(d.Items[i], r.Places)
	}
	d.Totals = Totals(d.Kind, d.Items, r)
	if d.Kind != domain.KindAsset {
		d.Schedule = nil
		return
	}
	if !ScheduleReady(d.Asset) {
		d.Schedule = nil
		return
	}
	entries, err := Schedule(d.Asset.Cost, d.Asset.SalvageValue, d.Asset.UsefulLifeYears, d.Asset.Method, r.Places)
	if err != nil {
		// ScheduleReady screens every error condition; keep the cache empty
		// rather than surfacing an impossible failure mid-edit.
		d.Schedule = nil
		return
	}
	d.Schedule = entries
}
