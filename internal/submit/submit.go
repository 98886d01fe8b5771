// Package submit packages a finished draft into the flat payload handed to
// the external persistence/reporting collaborator. One immutable snapshot per
// submission; nothing here ever mutates the draft.
package submit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledgerdesk/internal/domain"
)

// Payload is the submission envelope. Exactly one of the per-domain blocks is
// set, matching the draft's kind.
type Payload struct {
	ID          string              `json:"id"`
	Kind        domain.Kind         `json:"kind" enum:"asset,payroll,procurement"`
	SubmittedAt string              `json:"submitted_at" format:"date-time"`
	Asset       *AssetPayload       `json:"asset,omitempty"`
	Payroll     *PayrollPayload     `json:"payroll,omitempty"`
	Procurement *ProcurementPayload `json:"procurement,omitempty"`
}

type AssetPayload struct {
	Name                string                 `json:"name"`
	CategoryID          string                 `json:"category_id"`
	SerialNumber        string                 `json:"serial_number,omitempty"`
	PurchaseDate        string                 `json:"purchase_date,omitempty"`
	Cost                decimal.Decimal        `json:"cost"`
	SalvageValue        decimal.Decimal        `json:"salvage_value"`
	UsefulLifeYears     int                    `json:"useful_life_years"`
	Method              domain.Method          `json:"method"`
	Location            string                 `json:"location,omitempty"`
	CustodianID         string                 `json:"custodian_id,omitempty"`
	TotalDepreciable    decimal.Decimal        `json:"total_depreciable"`
	AnnualDepreciation  decimal.Decimal        `json:"annual_depreciation"`
	MonthlyDepreciation decimal.Decimal        `json:"monthly_depreciation"`
	Schedule            []domain.ScheduleEntry `json:"schedule,omitempty"`
}

type PayrollEntry struct {
	EmployeeID string          `json:"employee_id,omitempty"`
	Name       string          `json:"name"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Overtime   decimal.Decimal `json:"overtime"`
	Bonuses    decimal.Decimal `json:"bonuses"`
	Deductions decimal.Decimal `json:"deductions"`
	NetPay     decimal.Decimal `json:"net_pay"`
}

type PayrollPayload struct {
	RunName     string          `json:"run_name"`
	PeriodStart string          `json:"period_start,omitempty"`
	PeriodEnd   string          `json:"period_end,omitempty"`
	PayDate     string          `json:"pay_date,omitempty"`
	ApproverID  string          `json:"approver_id,omitempty"`
	Entries     []PayrollEntry  `json:"entries"`
	BaseSalary  decimal.Decimal `json:"base_salary"`
	Overtime    decimal.Decimal `json:"overtime"`
	Bonuses     decimal.Decimal `json:"bonuses"`
	Deductions  decimal.Decimal `json:"deductions"`
	NetPay      decimal.Decimal `json:"net_pay"`
}

type ProcurementItem struct {
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type ProcurementPayload struct {
	Department   string            `json:"department"`
	Priority     string            `json:"priority,omitempty"`
	OrderDate    string            `json:"order_date,omitempty"`
	RequiredDate string            `json:"required_date,omitempty"`
	VendorID     string            `json:"vendor_id,omitempty"`
	ShipTo       string            `json:"ship_to,omitempty"`
	Items        []ProcurementItem `json:"items"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	Tax          decimal.Decimal   `json:"tax"`
	Total        decimal.Decimal   `json:"total"`
}

// Snapshot flattens a draft into its submission payload. The draft's derived
// cache is expected to be fresh; the wizard guarantees that by recomputing
// after every mutation.
func Snapshot(d domain.Draft, now time.Time) Payload {
	p := Payload{
		ID:          uuid.New().String(),
		Kind:        d.Kind,
		SubmittedAt: now.UTC().Format(time.RFC3339),
	}
	switch d.Kind {
	case domain.KindAsset:
		p.Asset = assetPayload(d)
	case domain.KindPayroll:
		p.Payroll = payrollPayload(d)
	case domain.KindProcurement:
		p.Procurement = procurementPayload(d)
	}
	return p
}

func assetPayload(d domain.Draft) *AssetPayload {
	a := d.Asset
	out := &AssetPayload{
		Name:             a.Name,
		CategoryID:       a.CategoryID,
		SerialNumber:     a.SerialNumber,
		PurchaseDate:     a.PurchaseDate,
		Cost:             a.Cost,
		SalvageValue:     a.SalvageValue,
		UsefulLifeYears:  a.UsefulLifeYears,
		Method:           a.Method,
		Location:         a.Location,
		CustodianID:      a.CustodianID,
		TotalDepreciable: a.Cost.Sub(a.SalvageValue),
		Schedule:         append([]domain.ScheduleEntry(nil), d.Schedule...),
	}
	if a.UsefulLifeYears >= 1 {
		life := decimal.NewFromInt(int64(a.UsefulLifeYears))
		out.AnnualDepreciation = out.TotalDepreciable.Div(life)
		out.MonthlyDepreciation = out.AnnualDepreciation.Div(decimal.NewFromInt(12))
	}
	return out
}

func payrollPayload(d domain.Draft) *PayrollPayload {
	p := d.Payroll
	out := &PayrollPayload{
		RunName:     p.RunName,
		PeriodStart: p.PeriodStart,
		PeriodEnd:   p.PeriodEnd,
		PayDate:     p.PayDate,
		ApproverID:  p.ApproverID,
		Entries:     []PayrollEntry{},
		BaseSalary:  d.Totals.BaseSalary,
		Overtime:    d.Totals.Overtime,
		Bonuses:     d.Totals.Bonuses,
		Deductions:  d.Totals.Deductions,
		NetPay:      d.Totals.NetPay,
	}
	for _, it := range d.Items {
		out.Entries = append(out.Entries, PayrollEntry{
			EmployeeID: it.RefID,
			Name:       it.Description,
			BaseSalary: it.Rate,
			Overtime:   it.Overtime,
			Bonuses:    it.Bonuses,
			Deductions: it.Deductions,
			NetPay:     it.LineTotal,
		})
	}
	return out
}

func procurementPayload(d domain.Draft) *ProcurementPayload {
	p := d.Procurement
	out := &ProcurementPayload{
		Department:   p.Department,
		Priority:     p.Priority,
		OrderDate:    p.OrderDate,
		RequiredDate: p.RequiredDate,
		VendorID:     p.VendorID,
		ShipTo:       p.ShipTo,
		Items:        []ProcurementItem{},
		Subtotal:     d.Totals.Subtotal,
		Tax:          d.Totals.Tax,
		Total:        d.Totals.Total,
	}
	for _, it := range d.Items {
		out.Items = append(out.Items, ProcurementItem{
			Description: it.Description,
			Category:    it.RefID,
			Quantity:    it.Quantity,
			UnitPrice:   it.Rate,
			LineTotal:   it.LineTotal,
		})
	}
	return out
}
