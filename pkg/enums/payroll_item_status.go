package enums

import "fmt"

// PayrollItemStatus tracks the payment lifecycle of a payroll item.
//
// created -> submitted -> paid | failed. Paid and failed are terminal; there is
// no path back out of a terminal state, which is what forbids double payment.
type PayrollItemStatus string

const (
	PayrollItemStatusCreated   PayrollItemStatus = "created"
	PayrollItemStatusSubmitted PayrollItemStatus = "submitted"
	PayrollItemStatusPaid      PayrollItemStatus = "paid"
	PayrollItemStatusFailed    PayrollItemStatus = "failed"
)

var validPayrollItemStatuses = []PayrollItemStatus{
	PayrollItemStatusCreated,
	PayrollItemStatusSubmitted,
	PayrollItemStatusPaid,
	PayrollItemStatusFailed,
}

// String implements fmt.Stringer.
func (s PayrollItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PayrollItemStatus.
func (s PayrollItemStatus) IsValid() bool {
	for _, candidate := range validPayrollItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status transition is permitted.
func (s PayrollItemStatus) IsTerminal() bool {
	return s == PayrollItemStatusPaid || s == PayrollItemStatusFailed
}

// ParsePayrollItemStatus converts raw input into a PayrollItemStatus.
func ParsePayrollItemStatus(value string) (PayrollItemStatus, error) {
	for _, candidate := range validPayrollItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payroll item status %q", value)
}
