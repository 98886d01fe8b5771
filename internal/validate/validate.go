// Package validate is the advisory completeness gate. It reports which
// required fields are missing or invalid per wizard step without ever
// blocking navigation or submission; enforcement is a UI decision outside
// this core.
package validate

import (
	"ledgerdesk/internal/config"
	"ledgerdesk/internal/domain"
)

// StepReport is the gate's verdict for one wizard step.
type StepReport struct {
	Step     domain.Step `json:"step" enum:"basic,detail,assignment,review"`
	Complete bool        `json:"complete"`
	Missing  []string    `json:"missing,omitempty"`
}

// Report covers the whole draft.
type Report struct {
	Steps       []StepReport `json:"steps"`
	Submittable bool         `json:"submittable"`
}

// MissingFields returns the required field identifiers that are missing or
// invalid for the given step.
func MissingFields(cfg *config.Config, d *domain.Draft, step domain.Step) []string {
	var missing []string
	for _, field := range cfg.RequiredFields(d.Kind, step) {
		if !fieldFilled(d, field) {
			missing = append(missing, field)
		}
	}
	// An inconsistent salvage/cost pair is reported as invalid on the step
	// that owns those fields even when salvage is not a required field.
	if d.Kind == domain.KindAsset && step == domain.StepDetail {
		if d.Asset.SalvageValue.GreaterThan(d.Asset.Cost) {
			missing = append(missing, "salvage_value")
		}
	}
	return missing
}

// StepComplete reports whether every required field of the step is present.
func StepComplete(cfg *config.Config, d *domain.Draft, step domain.Step) bool {
	return len(MissingFields(cfg, d, step)) == 0
}

// Submittable reports whether every step of the draft is complete. It is
// advisory only: Submit remains invocable regardless.
func Submittable(cfg *config.Config, d *domain.Draft) bool {
	for _, step := range domain.Steps() {
		if !StepComplete(cfg, d, step) {
			return false
		}
	}
	return true
}

// Check builds the full per-step report for a draft.
func Check(cfg *config.Config, d *domain.Draft) Report {
	rep := Report{Submittable: true}
	for _, step := range domain.Steps() {
		missing := MissingFields(cfg, d, step)
		rep.Steps = append(rep.Steps, StepReport{
			Step:     step,
			Complete: len(missing) == 0,
			Missing:  missing,
		})
		if len(missing) > 0 {
			rep.Submittable = false
		}
	}
	return rep
}

func fieldFilled(d *domain.Draft, field string) bool {
	switch d.Kind {
	case domain.KindAsset:
		return assetFieldFilled(d, field)
	case domain.KindPayroll:
		return payrollFieldFilled(d, field)
	case domain.KindProcurement:
		return procurementFieldFilled(d, field)
	}
	return false
}

func assetFieldFilled(d *domain.Draft, field string) bool {
	a := d.Asset
	switch field {
	case "name":
		return a.Name != ""
	case "category":
		return a.CategoryID != ""
	case "serial_number":
		return a.SerialNumber != ""
	case "purchase_date":
		return a.PurchaseDate != ""
	case "cost":
		return a.Cost.IsPositive()
	case "salvage_value":
		return !a.SalvageValue.IsNegative()
	case "useful_life":
		return a.UsefulLifeYears >= 1
	case "method":
		return domain.ValidMethod(a.Method)
	case "location":
		return a.Location != ""
	case "custodian":
		return a.CustodianID != ""
	}
	return false
}

func payrollFieldFilled(d *domain.Draft, field string) bool {
	p := d.Payroll
	switch field {
	case "run_name":
		return p.RunName != ""
	case "period_start":
		return p.PeriodStart != ""
	case "period_end":
		return p.PeriodEnd != ""
	case "pay_date":
		return p.PayDate != ""
	case "approver":
		return p.ApproverID != ""
	case "items":
		return len(d.Items) > 0
	}
	return false
}

func procurementFieldFilled(d *domain.Draft, field string) bool {
	p := d.Procurement
	switch field {
	case "department":
		return p.Department != ""
	case "priority":
		return p.Priority != ""
	case "order_date":
		return p.OrderDate != ""
	case "required_date":
		return p.RequiredDate != ""
	case "vendor":
		return p.VendorID != ""
	case "ship_to":
		return p.ShipTo != ""
	case "items":
		return len(d.Items) > 0
	}
	return false
}
