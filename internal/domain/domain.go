package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies which entry workflow a draft belongs to.
type Kind string

const (
	KindAsset       Kind = "asset"
	KindPayroll     Kind = "payroll"
	KindProcurement Kind = "procurement"
)

// Kinds lists all workflow kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindAsset, KindPayroll, KindProcurement}
}

// ValidKind reports whether k is a known workflow kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindAsset, KindPayroll, KindProcurement:
		return true
	}
	return false
}

// Step is a wizard position. The names vary per domain in the UI but the
// shape is the same four-step sequence everywhere.
type Step string

const (
	StepBasic      Step = "basic"
	StepDetail     Step = "detail"
	StepAssignment Step = "assignment"
	StepReview     Step = "review"
)

// Steps returns the wizard sequence in order.
func Steps() []Step {
	return []Step{StepBasic, StepDetail, StepAssignment, StepReview}
}

// StepIndex returns the position of s in the sequence, or -1.
func StepIndex(s Step) int {
	for i, st := range Steps() {
		if st == s {
			return i
		}
	}
	return -1
}

// Method is a depreciation method.
type Method string

const (
	MethodStraightLine     Method = "straight_line"
	MethodDecliningBalance Method = "declining_balance"
	MethodSumOfYears       Method = "sum_of_years"
)

// ValidMethod reports whether m is a known depreciation method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodStraightLine, MethodDecliningBalance, MethodSumOfYears:
		return true
	}
	return false
}

// Sentinel errors for the draft-entry core. All are locally recoverable: the
// mutating call fails synchronously and leaves the draft unchanged.
var (
	// ErrInvalidValue marks a field that violates its numeric constraint
	// (negative price/quantity, salvage above cost).
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidInput marks an impossible derivation input, such as a zero or
	// negative divisor.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an operation against a line item id no longer present.
	ErrNotFound = errors.New("not found")
)

// FieldError wraps a sentinel error with the offending field so the caller
// can surface the condition inline next to it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error { return e.Err }

// InvalidValue returns an ErrInvalidValue annotated with the field name.
func InvalidValue(field string) error {
	return &FieldError{Field: field, Err: ErrInvalidValue}
}

// LineItem is one row in a draft's item collection: a procurement item or a
// payroll employee entry. Rate carries the unit price or base salary; the
// adjustment fields are only used by payroll entries. LineTotal is derived,
// never set directly.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	RefID       string          `json:"ref_id,omitempty"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Overtime    decimal.Decimal `json:"overtime"`
	Bonuses     decimal.Decimal `json:"bonuses"`
	Deductions  decimal.Decimal `json:"deductions"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// AggregateTotals caches the sums derived from a draft's line items. It is
// recomputed whenever the item collection changes and is never a source of
// truth on its own.
type AggregateTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Overtime   decimal.Decimal `json:"overtime"`
	Bonuses    decimal.Decimal `json:"bonuses"`
	Deductions decimal.Decimal `json:"deductions"`
	NetPay     decimal.Decimal `json:"net_pay"`
}

// ScheduleEntry is one period of a depreciation schedule.
type ScheduleEntry struct {
	Period                  int             `json:"period"`
	OpeningValue            decimal.Decimal `json:"opening_value"`
	PeriodDepreciation      decimal.Decimal `json:"period_depreciation"`
	ClosingValue            decimal.Decimal `json:"closing_value"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
}

// AssetFields are the primitive fields of an asset registration draft.
type AssetFields struct {
	Name            string          `json:"name"`
	CategoryID      string          `json:"category_id"`
	SerialNumber    string          `json:"serial_number,omitempty"`
	PurchaseDate    string          `json:"purchase_date,omitempty"`
	Cost            decimal.Decimal `json:"cost"`
	SalvageValue    decimal.Decimal `json:"salvage_value"`
	UsefulLifeYears int             `json:"useful_life_years"`
	Method          Method          `json:"method,omitempty" enum:"straight_line,declining_balance,sum_of_years"`
	Location        string          `json:"location,omitempty"`
	CustodianID     string          `json:"custodian_id,omitempty"`
}

// PayrollFields are the primitive fields of a payroll run draft.
type PayrollFields struct {
	RunName     string `json:"run_name"`
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`
	PayDate     string `json:"pay_date,omitempty"`
	ApproverID  string `json:"approver_id,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ProcurementFields are the primitive fields of a procurement order draft.
type ProcurementFields struct {
	Department   string `json:"department"`
	Priority     string `json:"priority,omitempty"`
	OrderDate    string `json:"order_date,omitempty"`
	RequiredDate string `json:"required_date,omitempty"`
	VendorID     string `json:"vendor_id,omitempty"`
	ShipTo       string `json:"ship_to,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Draft is the mutable working document for one in-progress entity. It is
// owned by exactly one wizard machine, mutated only through it, and discarded
// on reset, close, or submit. Derived fields (item line totals, Totals,
// Schedule) are a cache recomputed after every mutation.
type Draft struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind" enum:"asset,payroll,procurement"`
	Step        Step              `json:"step" enum:"basic,detail,assignment,review"`
	CreatedAt   string            `json:"created_at" format:"date-time"`
	Asset       AssetFields       `json:"asset"`
	Payroll     PayrollFields     `json:"payroll"`
	Procurement ProcurementFields `json:"procurement"`
	Items       []LineItem        `json:"items,omitempty"`
	Totals      AggregateTotals   `json:"totals"`
	Schedule    []ScheduleEntry   `json:"schedule,omitempty"`
}

// Employee is a read-only directory record.
type Employee struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Department string          `json:"department,omitempty"`
	BaseSalary decimal.Decimal `json:"base_salary"`
}

// Vendor is a read-only directory record.
type Vendor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// AssetCategory is a read-only directory record.
type AssetCategory struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DefaultLifeYears int    `json:"default_life_years"`
	DefaultMethod    Method `json:"default_method,omitempty"`
}

// ParseAmount normalizes user text input for a numeric field. Empty or
// unparseable input becomes zero rather than a parse error, matching the
// forgiving draft-in-progress behavior of the entry forms.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
