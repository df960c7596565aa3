package enums

import "fmt"

// PayrollBatchStatus is the administrative state of a pay run. It has no
// bearing on item payment logic.
type PayrollBatchStatus string

const (
	PayrollBatchStatusDraft      PayrollBatchStatus = "draft"
	PayrollBatchStatusProcessing PayrollBatchStatus = "processing"
	PayrollBatchStatusClosed     PayrollBatchStatus = "closed"
)

var validPayrollBatchStatuses = []PayrollBatchStatus{
	PayrollBatchStatusDraft,
	PayrollBatchStatusProcessing,
	PayrollBatchStatusClosed,
}

func (s PayrollBatchStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PayrollBatchStatus.
func (s PayrollBatchStatus) IsValid() bool {
	for _, candidate := range validPayrollBatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePayrollBatchStatus converts raw input into a PayrollBatchStatus.
func ParsePayrollBatchStatus(value string) (PayrollBatchStatus, error) {
	for _, candidate := range validPayrollBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payroll batch status %q", value)
}
