package server

import (
	"ledgerdesk/internal/domain"
	"ledgerdesk/internal/validate"
)

// Request payloads. Money fields travel as strings; empty or unparseable
// input is normalized to zero on the way in rather than rejected.

type CreateDraftRequest struct {
	Kind string `json:"kind" enum:"asset,payroll,procurement"`
}

type AssetFieldsRequest struct {
	Name            *string `json:"name,omitempty"`
	CategoryID      *string `json:"category_id,omitempty"`
	SerialNumber    *string `json:"serial_number,omitempty"`
	PurchaseDate    *string `json:"purchase_date,omitempty"`
	Cost            *string `json:"cost,omitempty" example:"1200.00"`
	SalvageValue    *string `json:"salvage_value,omitempty" example:"200.00"`
	UsefulLifeYears *int    `json:"useful_life_years,omitempty"`
	Method          *string `json:"method,omitempty" enum:"straight_line,declining_balance,sum_of_years"`
	Location        *string `json:"location,omitempty"`
	CustodianID     *string `json:"custodian_id,omitempty"`
}

type PayrollFieldsRequest struct {
	RunName     *string `json:"run_name,omitempty"`
	PeriodStart *string `json:"period_start,omitempty"`
	PeriodEnd   *string `json:"period_end,omitempty"`
	PayDate     *string `json:"pay_date,omitempty"`
	ApproverID  *string `json:"approver_id,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type ProcurementFieldsRequest struct {
	Department   *string `json:"department,omitempty"`
	Priority     *string `json:"priority,omitempty"`
	OrderDate    *string `json:"order_date,omitempty"`
	RequiredDate *string `json:"required_date,omitempty"`
	VendorID     *string `json:"vendor_id,omitempty"`
	ShipTo       *string `json:"ship_to,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type UpdateFieldsRequest struct {
	Asset       *AssetFieldsRequest       `json:"asset,omitempty"`
	Payroll     *PayrollFieldsRequest     `json:"payroll,omitempty"`
	Procurement *ProcurementFieldsRequest `json:"procurement,omitempty"`
}

type AddItemRequest struct {
	Description string  `json:"description"`
	RefID       *string `json:"ref_id,omitempty"`
	Quantity    *int64  `json:"quantity,omitempty"`
	Rate        *string `json:"rate,omitempty" example:"50.00"`
	Overtime    *string `json:"overtime,omitempty"`
	Bonuses     *string `json:"bonuses,omitempty"`
	Deductions  *string `json:"deductions,omitempty"`
}

type UpdateItemRequest struct {
	Description *string `json:"description,omitempty"`
	RefID       *string `json:"ref_id,omitempty"`
	Quantity    *int64  `json:"quantity,omitempty"`
	Rate        *string `json:"rate,omitempty"`
	Overtime    *string `json:"overtime,omitempty"`
	Bonuses     *string `json:"bonuses,omitempty"`
	Deductions  *string `json:"deductions,omitempty"`
}

type GotoStepRequest struct {
	Step string `json:"step" enum:"basic,detail,assignment,review"`
}

// Response payloads. Money fields are rendered as fixed-point strings.

type ItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	RefID       string `json:"ref_id,omitempty"`
	Quantity    int64  `json:"quantity"`
	Rate        string `json:"rate"`
	Overtime    string `json:"overtime"`
	Bonuses     string `json:"bonuses"`
	Deductions  string `json:"deductions"`
	LineTotal   string `json:"line_total"`
}

type TotalsResponse struct {
	Subtotal   string `json:"subtotal"`
	Tax        string `json:"tax"`
	Total      string `json:"total"`
	BaseSalary string `json:"base_salary"`
	Overtime   string `json:"overtime"`
	Bonuses    string `json:"bonuses"`
	Deductions string `json:"deductions"`
	NetPay     string `json:"net_pay"`
}

type ScheduleEntryResponse struct {
	Period                  int    `json:"period"`
	OpeningValue            string `json:"opening_value"`
	PeriodDepreciation      string `json:"period_depreciation"`
	ClosingValue            string `json:"closing_value"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
}

type AssetFieldsResponse struct {
	Name            string `json:"name,omitempty"`
	CategoryID      string `json:"category_id,omitempty"`
	SerialNumber    string `json:"serial_number,omitempty"`
	PurchaseDate    string `json:"purchase_date,omitempty"`
	Cost            string `json:"cost"`
	SalvageValue    string `json:"salvage_value"`
	UsefulLifeYears int    `json:"useful_life_years"`
	Method          string `json:"method,omitempty"`
	Location        string `json:"location,omitempty"`
	CustodianID     string `json:"custodian_id,omitempty"`
}

type DraftResponse struct {
	ID          string                    `json:"id"`
	Kind        string                    `json:"kind" enum:"asset,payroll,procurement"`
	Step        string                    `json:"step" enum:"basic,detail,assignment,review"`
	CreatedAt   string                    `json:"created_at" format:"date-time"`
	Asset       *AssetFieldsResponse      `json:"asset,omitempty"`
	Payroll     *domain.PayrollFields     `json:"payroll,omitempty"`
	Procurement *domain.ProcurementFields `json:"procurement,omitempty"`
	Items       []ItemResponse            `json:"items,omitempty"`
	Totals      TotalsResponse            `json:"totals"`
	Schedule    []ScheduleEntryResponse   `json:"schedule,omitempty"`
	Validation  validate.Report           `json:"validation"`
}

type SubmissionResponse struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	SubmittedAt string         `json:"submitted_at" format:"date-time"`
	Payload     map[string]any `json:"payload" jsonschema:"type=object,additionalProperties=true"`
}

type EmployeeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	BaseSalary string `json:"base_salary"`
}

func employeeResponses(items []domain.Employee, places int32) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(items))
	for _, e := range items {
		out = append(out, EmployeeResponse{
			ID:         e.ID,
			Name:       e.Name,
			Department: e.Department,
			BaseSalary: e.BaseSalary.StringFixed(places),
		})
	}
	return out
}

func itemResponse(it domain.LineItem, places int32) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Description: it.Description,
		RefID:       it.RefID,
		Quantity:    it.Quantity,
		Rate:        it.Rate.StringFixed(places),
		Overtime:    it.Overtime.StringFixed(places),
		Bonuses:     it.Bonuses.StringFixed(places),
		Deductions:  it.Deductions.StringFixed(places),
		LineTotal:   it.LineTotal.StringFixed(places),
	}
}

func totalsResponse(t domain.AggregateTotals, places int32) TotalsResponse {
	return TotalsResponse{
		Subtotal:   t.Subtotal.StringFixed(places),
		Tax:        t.Tax.StringFixed(places),
		Total:      t.Total.StringFixed(places),
		BaseSalary: t.BaseSalary.StringFixed(places),
		Overtime:   t.Overtime.StringFixed(places),
		Bonuses:    t.Bonuses.StringFixed(places),
		Deductions: t.Deductions.StringFixed(places),
		NetPay:     t.NetPay.StringFixed(places),
	}
}

func scheduleResponse(entries []domain.ScheduleEntry, places int32) []ScheduleEntryResponse {
	out := make([]ScheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ScheduleEntryResponse{
			Period:                  e.Period,
			OpeningValue:            e.OpeningValue.StringFixed(places),
			PeriodDepreciation:      e.PeriodDepreciation.StringFixed(places),
			ClosingValue:            e.ClosingValue.StringFixed(places),
			AccumulatedDepreciation: e.AccumulatedDepreciation.StringFixed(places),
		})
	}
	return out
}

func draftResponse(d domain.Draft, rep validate.Report, places int32) DraftResponse {
	resp := DraftResponse{
		ID:         d.ID,
		Kind:       string(d.Kind),
		Step:       string(d.Step),
		CreatedAt:  d.CreatedAt,
		Totals:     totalsResponse(d.Totals, places),
		Validation: rep,
	}
	switch d.Kind {
	case domain.KindAsset:
		a := d.Asset
		resp.Asset = &AssetFieldsResponse{
			Name:            a.Name,
			CategoryID:      a.CategoryID,
			SerialNumber:    a.SerialNumber,
			PurchaseDate:    a.PurchaseDate,
			Cost:            a.Cost.StringFixed(places),
			SalvageValue:    a.SalvageValue.StringFixed(places),
			UsefulLifeYears: a.UsefulLifeYears,
			Method:          string(a.Method),
			Location:        a.Location,
			CustodianID:     a.CustodianID,
		}
		resp.Schedule = scheduleResponse(d.Schedule, places)
	case domain.KindPayroll:
		p := d.Payroll
		resp.Payroll = &p
	case domain.KindProcurement:
		p := d.Procurement
		resp.Procurement = &p
	}
	for _, it := range d.Items {
		resp.Items = append(resp.Items, itemResponse(it, places))
	}
	return resp
}
