package derive_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"ledgerdesk/internal/derive"
	"ledgerdesk/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(qty int64, rate, overtime, bonuses, deductions string) domain.LineItem {
	return domain.LineItem{
		Quantity:   qty,
		Rate:       dec(rate),
		Overtime:   dec(overtime),
		Bonuses:    dec(bonuses),
		Deductions: dec(deductions),
	}
}

func refresh(items []domain.LineItem, r derive.Rates) []domain.LineItem {
	for i := range items {
		items[i].LineTotal = derive.LineTotal(items[i], r.Places)
	}
	return items
}

func TestProcurementTotals(t *testing.T) {
	r := derive.DefaultRates()
	items := refresh([]domain.LineItem{
		item(10, "50", "0", "0", "0"),
		item(5, "20", "0", "0", "0"),
	}, r)
	totals := derive.Totals(domain.KindProcurement, items, r)
	if got := totals.Subtotal.StringFixed(2); got != "600.00" {
		t.Fatalf("subtotal = %s, want 600.00", got)
	}
	if got := totals.Tax.StringFixed(2); got != "48.00" {
		t.Fatalf("tax = %s, want 48.00", got)
	}
	if got := totals.Total.StringFixed(2); got != "648.00" {
		t.Fatalf("total = %s, want 648.00", got)
	}
}

func TestPayrollNetPay(t *testing.T) {
	r := derive.DefaultRates()
	first := refresh([]domain.LineItem{
		item(1, "5000", "200", "1000", "900"),
	}, r)
	totals := derive.Totals(domain.KindPayroll, first, r)
	if got := totals.NetPay.StringFixed(2); got != "5300.00" {
		t.Fatalf("net pay = %s, want 5300.00", got)
	}
	if !totals.Tax.IsZero() {
		t.Fatalf("payroll tax = %s, want zero", totals.Tax)
	}

	both := refresh([]domain.LineItem{
		item(1, "5000", "200", "1000", "900"),
		item(1, "4500", "0", "0", "800"),
	}, r)
	totals = derive.Totals(domain.KindPayroll, both, r)
	if got := totals.NetPay.StringFixed(2); got != "9000.00" {
		t.Fatalf("aggregate net pay = %s, want 9000.00", got)
	}
	if got := totals.BaseSalary.StringFixed(2); got != "9500.00" {
		t.Fatalf("aggregate base = %s, want 9500.00", got)
	}
}

func TestNegativeNetPayAllowed(t *testing.T) {
	r := derive.DefaultRates()
	items := refresh([]domain.LineItem{
		item(1, "1000", "0", "0", "1500"),
	}, r)
	totals := derive.Totals(domain.KindPayroll, items, r)
	if got := totals.NetPay.StringFixed(2); got != "-500.00" {
		t.Fatalf("net pay = %s, want -500.00", got)
	}
}

func TestSumInvariant(t *testing.T) {
	r := derive.DefaultRates()
	items := refresh([]domain.LineItem{
		item(3, "19.99", "0", "0", "0"),
		item(7, "0.07", "0", "0", "0"),
		item(1, "1234.56", "12.34", "0.01", "99.99"),
	}, r)
	totals := derive.Totals(domain.KindProcurement, items, r)
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal)
	}
	if !totals.Subtotal.Equal(sum) {
		t.Fatalf("subtotal %s != item sum %s", totals.Subtotal, sum)
	}
}

func TestStraightLineSchedule(t *testing.T) {
	annual, err := derive.Annual(dec("1200"), dec("200"), 3)
	if err != nil {
		t.Fatalf("annual: %v", err)
	}
	if got := annual.Round(2).StringFixed(2); got != "333.33" {
		t.Fatalf("annual = %s, want 333.33", got)
	}
	monthly, err := derive.Monthly(dec("1200"), dec("200"), 3)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if got := monthly.Round(2).StringFixed(2); got != "27.78" {
		t.Fatalf("monthly = %s, want 27.78", got)
	}

	entries, err := derive.Schedule(dec("1200"), dec("200"), 3, domain.MethodStraightLine, 2)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	wantDep := []string{"333.33", "333.33", "333.34"}
	for i, e := range entries {
		if got := e.PeriodDepreciation.StringFixed(2); got != wantDep[i] {
			t.Fatalf("period %d depreciation = %s, want %s", e.Period, got, wantDep[i])
		}
	}
	last := entries[len(entries)-1]
	if !last.ClosingValue.Equal(dec("200")) {
		t.Fatalf("final closing = %s, want 200 exactly", last.ClosingValue)
	}
	if !last.AccumulatedDepreciation.Equal(dec("1000")) {
		t.Fatalf("accumulated = %s, want 1000", last.AccumulatedDepreciation)
	}
}

func TestScheduleInvariantsAllMethods(t *testing.T) {
	cases := []struct {
		cost, salvage string
		life          int
	}{
		{"1200", "200", 3},
		{"10000", "0", 5},
		{"9999.99", "1234.56", 7},
		{"500", "500", 4},
	}
	for _, method := range []domain.Method{domain.MethodStraightLine, domain.MethodDecliningBalance, domain.MethodSumOfYears} {
		for _, tc := range cases {
			entries, err := derive.Schedule(dec(tc.cost), dec(tc.salvage), tc.life, method, 2)
			if err != nil {
				t.Fatalf("%s %s/%s/%d: %v", method, tc.cost, tc.salvage, tc.life, err)
			}
			if len(entries) != tc.life {
				t.Fatalf("%s: len = %d, want %d", method, len(entries), tc.life)
			}
			opening := dec(tc.cost)
			accumulated := decimal.Zero
			for _, e := range entries {
				if !e.OpeningValue.Equal(opening) {
					t.Fatalf("%s period %d: opening %s, want %s", method, e.Period, e.OpeningValue, opening)
				}
				if !e.ClosingValue.Equal(e.OpeningValue.Sub(e.PeriodDepreciation)) {
					t.Fatalf("%s period %d: closing %s != opening - depreciation", method, e.Period, e.ClosingValue)
				}
				if e.PeriodDepreciation.IsNegative() {
					t.Fatalf("%s period %d: negative depreciation %s", method, e.Period, e.PeriodDepreciation)
				}
				accumulated = accumulated.Add(e.PeriodDepreciation)
				if !e.AccumulatedDepreciation.Equal(accumulated) {
					t.Fatalf("%s period %d: accumulated %s, want %s", method, e.Period, e.AccumulatedDepreciation, accumulated)
				}
				opening = e.ClosingValue
			}
			if !opening.Equal(dec(tc.salvage)) {
				t.Fatalf("%s %s/%s/%d: final closing %s, want %s", method, tc.cost, tc.salvage, tc.life, opening, tc.salvage)
			}
		}
	}
}

func TestScheduleInputErrors(t *testing.T) {
	if _, err := derive.Schedule(dec("1000"), dec("0"), 0, domain.MethodStraightLine, 2); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero life: got %v, want ErrInvalidInput", err)
	}
	if _, err := derive.Schedule(dec("-1"), dec("0"), 3, domain.MethodStraightLine, 2); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("negative cost: got %v, want ErrInvalidValue", err)
	}
	if _, err := derive.Schedule(dec("100"), dec("-1"), 3, domain.MethodStraightLine, 2); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("negative salvage: got %v, want ErrInvalidValue", err)
	}
	if _, err := derive.Schedule(dec("100"), dec("200"), 3, domain.MethodStraightLine, 2); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("salvage above cost: got %v, want ErrInvalidValue", err)
	}
	if _, err := derive.Schedule(dec("100"), dec("0"), 3, domain.Method("accelerated"), 2); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown method: got %v, want ErrInvalidInput", err)
	}
}

func TestAllIdempotent(t *testing.T) {
	r := derive.DefaultRates()
	d := domain.Draft{
		Kind: domain.KindAsset,
		Asset: domain.AssetFields{
			Cost:            dec("1200"),
			SalvageValue:    dec("200"),
			UsefulLifeYears: 3,
			Method:          domain.MethodStraightLine,
		},
	}
	derive.All(&d, r)
	first := d
	derive.All(&d, r)
	if len(d.Schedule) != len(first.Schedule) {
		t.Fatalf("schedule length changed on repeat derivation")
	}
	for i := range d.Schedule {
		if !d.Schedule[i].ClosingValue.Equal(first.Schedule[i].ClosingValue) {
			t.Fatalf("period %d closing changed on repeat derivation", i+1)
		}
	}
	if !d.Totals.Subtotal.Equal(first.Totals.Subtotal) {
		t.Fatalf("subtotal changed on repeat derivation")
	}
}

func TestAllClearsScheduleWhenNotReady(t *testing.T) {
	r := derive.DefaultRates()
	d := domain.Draft{
		Kind: domain.KindAsset,
		Asset: domain.AssetFields{
			Cost:            dec("1200"),
			SalvageValue:    dec("200"),
			UsefulLifeYears: 3,
			Method:          domain.MethodStraightLine,
		},
	}
	derive.All(&d, r)
	if len(d.Schedule) == 0 {
		t.Fatalf("expected schedule for complete inputs")
	}
	d.Asset.UsefulLifeYears = 0
	derive.All(&d, r)
	if len(d.Schedule) != 0 {
		t.Fatalf("expected empty schedule after life cleared, got %d entries", len(d.Schedule))
	}
}
