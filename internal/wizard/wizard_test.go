package wizard_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledgerdesk/internal/config"
	"ledgerdesk/internal/domain"
	"ledgerdesk/internal/store"
	"ledgerdesk/internal/wizard"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func qty(n int64) *int64      { return &n }

func newMachine(t *testing.T, kind domain.Kind) *wizard.Machine {
	t.Helper()
	m, err := wizard.New(kind, config.Default())
	if err != nil {
		t.Fatalf("new %s machine: %v", kind, err)
	}
	m.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestStepSequence(t *testing.T) {
	m := newMachine(t, domain.KindProcurement)
	if m.Step() != domain.StepBasic {
		t.Fatalf("initial step = %s, want basic", m.Step())
	}
	if err := m.Previous(); !errors.Is(err, wizard.ErrInvalidStep) {
		t.Fatalf("previous from basic: got %v, want ErrInvalidStep", err)
	}
	for _, want := range []domain.Step{domain.StepDetail, domain.StepAssignment, domain.StepReview} {
		if err := m.Next(); err != nil {
			t.Fatalf("next to %s: %v", want, err)
		}
		if m.Step() != want {
			t.Fatalf("step = %s, want %s", m.Step(), want)
		}
	}
	if err := m.Next(); !errors.Is(err, wizard.ErrInvalidStep) {
		t.Fatalf("next from review: got %v, want ErrInvalidStep", err)
	}
	if err := m.Previous(); err != nil || m.Step() != domain.StepAssignment {
		t.Fatalf("previous from review: err=%v step=%s", err, m.Step())
	}
}

func TestJumpIsUngated(t *testing.T) {
	m := newMachine(t, domain.KindPayroll)
	if err := m.Jump(domain.StepReview); err != nil {
		t.Fatalf("jump to review from empty draft: %v", err)
	}
	if m.Step() != domain.StepReview {
		t.Fatalf("step = %s, want review", m.Step())
	}
	if err := m.Jump(domain.Step("shipping")); !errors.Is(err, wizard.ErrInvalidStep) {
		t.Fatalf("jump to unknown step: got %v, want ErrInvalidStep", err)
	}
	if m.Step() != domain.StepReview {
		t.Fatalf("failed jump moved the machine to %s", m.Step())
	}
}

func TestUnknownKindRejected(t *testing.T) {
	if _, err := wizard.New(domain.Kind("expense"), config.Default()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown kind: got %v, want ErrInvalidInput", err)
	}
}

func TestDerivedValuesFreshAfterEveryMutation(t *testing.T) {
	m := newMachine(t, domain.KindProcurement)

	it, err := m.AddItem(store.AddOptions{Description: "desk", Quantity: qty(10), Rate: dec("50")})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if got := m.Draft().Totals.Subtotal.StringFixed(2); got != "500.00" {
		t.Fatalf("subtotal after add = %s, want 500.00", got)
	}
	if _, err := m.AddItem(store.AddOptions{Description: "chair", Quantity: qty(5), Rate: dec("20")}); err != nil {
		t.Fatalf("add second item: %v", err)
	}
	d := m.Draft()
	if got := d.Totals.Subtotal.StringFixed(2); got != "600.00" {
		t.Fatalf("subtotal = %s, want 600.00", got)
	}
	if got := d.Totals.Tax.StringFixed(2); got != "48.00" {
		t.Fatalf("tax = %s, want 48.00", got)
	}
	if got := d.Totals.Total.StringFixed(2); got != "648.00" {
		t.Fatalf("total = %s, want 648.00", got)
	}

	newQty := int64(20)
	if _, err := m.UpdateItem(it.ID, store.UpdateOptions{Quantity: &newQty}); err != nil {
		t.Fatalf("update item: %v", err)
	}
	if got := m.Draft().Totals.Subtotal.StringFixed(2); got != "1100.00" {
		t.Fatalf("subtotal after update = %s, want 1100.00", got)
	}

	if err := m.RemoveItem(it.ID); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if got := m.Draft().Totals.Subtotal.StringFixed(2); got != "100.00" {
		t.Fatalf("subtotal after remove = %s, want 100.00", got)
	}
}

func TestPayrollQuantityIsAlwaysOne(t *testing.T) {
	m := newMachine(t, domain.KindPayroll)

	if _, err := m.AddItem(store.AddOptions{Description: "Ada", Quantity: qty(2), Rate: dec("5000")}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("payroll quantity 2 on add: got %v, want ErrInvalidValue", err)
	}
	if len(m.Draft().Items) != 0 {
		t.Fatalf("rejected entry landed in the draft")
	}

	it, err := m.AddItem(store.AddOptions{Description: "Ada", Quantity: qty(1), Rate: dec("5000"), Bonuses: dec("300")})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if _, err := m.UpdateItem(it.ID, store.UpdateOptions{Quantity: qty(3)}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("payroll quantity 3 on update: got %v, want ErrInvalidValue", err)
	}

	d := m.Draft()
	if got := d.Items[0].Quantity; got != 1 {
		t.Fatalf("quantity after rejected update = %d, want 1", got)
	}
	if got := d.Totals.NetPay.StringFixed(2); got != "5300.00" {
		t.Fatalf("net pay = %s, want base plus bonuses 5300.00", got)
	}
}

func TestAssetScheduleRecompute(t *testing.T) {
	m := newMachine(t, domain.KindAsset)
	err := m.SetAssetFields(wizard.AssetFieldOptions{
		Name:            strPtr("laptop"),
		Cost:            decPtr("1200"),
		SalvageValue:    decPtr("200"),
		UsefulLifeYears: intPtr(3),
	})
	if err != nil {
		t.Fatalf("set fields: %v", err)
	}
	d := m.Draft()
	if len(d.Schedule) != 3 {
		t.Fatalf("schedule len = %d, want 3", len(d.Schedule))
	}
	if !d.Schedule[2].ClosingValue.Equal(dec("200")) {
		t.Fatalf("final closing = %s, want 200", d.Schedule[2].ClosingValue)
	}

	// clearing the life empties the schedule instead of failing
	if err := m.SetAssetFields(wizard.AssetFieldOptions{UsefulLifeYears: intPtr(0)}); err != nil {
		t.Fatalf("clear life: %v", err)
	}
	if len(m.Draft().Schedule) != 0 {
		t.Fatalf("schedule not cleared after life removed")
	}
}

func TestAssetFieldRejections(t *testing.T) {
	m := newMachine(t, domain.KindAsset)
	if err := m.SetAssetFields(wizard.AssetFieldOptions{Cost: decPtr("-5")}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("negative cost: got %v, want ErrInvalidValue", err)
	}
	if err := m.SetAssetFields(wizard.AssetFieldOptions{UsefulLifeYears: intPtr(9999)}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("life beyond max: got %v, want ErrInvalidValue", err)
	}
	bad := domain.Method("accelerated")
	if err := m.SetAssetFields(wizard.AssetFieldOptions{Method: &bad}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("unknown method: got %v, want ErrInvalidValue", err)
	}
	if _, err := m.AddItem(store.AddOptions{Description: "x", Rate: dec("1")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("items on asset draft: got %v, want ErrInvalidInput", err)
	}
}

func TestSalvageAboveCostAcceptedMidEdit(t *testing.T) {
	m := newMachine(t, domain.KindAsset)
	err := m.SetAssetFields(wizard.AssetFieldOptions{
		Cost:            decPtr("100"),
		SalvageValue:    decPtr("500"),
		UsefulLifeYears: intPtr(3),
	})
	if err != nil {
		t.Fatalf("inconsistent pair rejected mid-edit: %v", err)
	}
	d := m.Draft()
	if len(d.Schedule) != 0 {
		t.Fatalf("schedule generated for inconsistent inputs")
	}
	report := m.Validation()
	found := false
	for _, s := range report.Steps {
		if s.Step != domain.StepDetail {
			continue
		}
		for _, f := range s.Missing {
			if f == "salvage_value" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("salvage above cost not reported by the gate: %+v", report)
	}
}

func TestFieldKindMismatch(t *testing.T) {
	m := newMachine(t, domain.KindPayroll)
	if err := m.SetProcurementFields(wizard.ProcurementFieldOptions{Department: strPtr("IT")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("procurement fields on payroll draft: got %v, want ErrInvalidInput", err)
	}
	if err := m.SetAssetFields(wizard.AssetFieldOptions{Name: strPtr("x")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("asset fields on payroll draft: got %v, want ErrInvalidInput", err)
	}
}

func TestResetKeepsIdentity(t *testing.T) {
	m := newMachine(t, domain.KindProcurement)
	before := m.Draft()
	if err := m.SetProcurementFields(wizard.ProcurementFieldOptions{Department: strPtr("IT")}); err != nil {
		t.Fatalf("set fields: %v", err)
	}
	if _, err := m.AddItem(store.AddOptions{Description: "desk", Quantity: qty(2), Rate: dec("100")}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	m.Jump(domain.StepReview)

	m.Reset()
	d := m.Draft()
	if d.ID != before.ID || d.CreatedAt != before.CreatedAt {
		t.Fatalf("reset changed draft identity")
	}
	if d.Step != domain.StepBasic {
		t.Fatalf("step after reset = %s, want basic", d.Step)
	}
	if len(d.Items) != 0 || d.Procurement.Department != "" {
		t.Fatalf("reset left input behind: %+v", d)
	}
	if !d.Totals.Subtotal.IsZero() {
		t.Fatalf("totals not recomputed after reset: %s", d.Totals.Subtotal)
	}
}

func TestSubmitOnlyFromReview(t *testing.T) {
	m := newMachine(t, domain.KindPayroll)
	if _, err := m.Submit(); !errors.Is(err, wizard.ErrInvalidStep) {
		t.Fatalf("submit from basic: got %v, want ErrInvalidStep", err)
	}
	if _, err := m.AddItem(store.AddOptions{Description: "Ada", Rate: dec("5000"), Overtime: dec("200"), Bonuses: dec("1000"), Deductions: dec("900")}); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	m.Jump(domain.StepReview)
	payload, err := m.Submit()
	if err != nil {
		t.Fatalf("submit from review: %v", err)
	}
	if payload.Kind != domain.KindPayroll || payload.Payroll == nil {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if got := payload.Payroll.NetPay.StringFixed(2); got != "5300.00" {
		t.Fatalf("payload net pay = %s, want 5300.00", got)
	}
	if payload.ID == "" || payload.SubmittedAt == "" {
		t.Fatalf("payload missing id or timestamp: %+v", payload)
	}
}

func TestSubmitAllowedWithIncompleteSteps(t *testing.T) {
	m := newMachine(t, domain.KindProcurement)
	m.Jump(domain.StepReview)
	report := m.Validation()
	if report.Submittable {
		t.Fatalf("empty draft reported submittable")
	}
	if _, err := m.Submit(); err != nil {
		t.Fatalf("advisory gate blocked submit: %v", err)
	}
}
