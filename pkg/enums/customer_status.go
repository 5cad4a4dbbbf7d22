package enums

import "fmt"

// CustomerStatus is the customer's position in the install workflow.
type CustomerStatus string

const (
	StatusNewOrder        CustomerStatus = "New Order"
	StatusSiteSurveyReady CustomerStatus = "Site Survey Ready"
	StatusTorysList       CustomerStatus = "Torys List"
	StatusNIDReady        CustomerStatus = "NID Ready"
	StatusInstallReady    CustomerStatus = "Install Ready"
	StatusCompleted       CustomerStatus = "Completed"
	StatusOnHold          CustomerStatus = "On Hold"
	StatusArchived        CustomerStatus = "Archived"
)

// legacyTorysList is the apostrophe spelling still written by the old client.
const legacyTorysList CustomerStatus = "Tory's List"

// workflow is the ordered stage sequence. On Hold and Archived sit outside it.
var workflow = []CustomerStatus{
	StatusNewOrder,
	StatusSiteSurveyReady,
	StatusTorysList,
	StatusNIDReady,
	StatusInstallReady,
	StatusCompleted,
}

var validCustomerStatuses = []CustomerStatus{
	StatusNewOrder,
	StatusSiteSurveyReady,
	StatusTorysList,
	StatusNIDReady,
	StatusInstallReady,
	StatusCompleted,
	StatusOnHold,
	StatusArchived,
}

// Workflow returns a copy of the ordered stage sequence.
func Workflow() []CustomerStatus {
	out := make([]CustomerStatus, len(workflow))
	copy(out, workflow)
	return out
}

// NormalizeCustomerStatus maps the legacy spelling onto the canonical value.
// Every read path goes through this so predicates never see the old label.
func NormalizeCustomerStatus(value CustomerStatus) CustomerStatus {
	if value == legacyTorysList {
		return StatusTorysList
	}
	return value
}

// String implements fmt.Stringer.
func (s CustomerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is one of the eight known statuses.
func (s CustomerStatus) IsValid() bool {
	normalized := NormalizeCustomerStatus(s)
	for _, candidate := range validCustomerStatuses {
		if candidate == normalized {
			return true
		}
	}
	return false
}

// IsStage reports whether the status is part of the ordered workflow.
func (s CustomerStatus) IsStage() bool {
	_, ok := s.WorkflowIndex()
	return ok
}

// WorkflowIndex returns the position of the status in the ordered sequence.
// On Hold and Archived are not indexable.
func (s CustomerStatus) WorkflowIndex() (int, bool) {
	normalized := NormalizeCustomerStatus(s)
	for i, candidate := range workflow {
		if candidate == normalized {
			return i, true
		}
	}
	return 0, false
}

// ParseCustomerStatus converts the raw string to a canonical CustomerStatus.
func ParseCustomerStatus(value string) (CustomerStatus, error) {
	normalized := NormalizeCustomerStatus(CustomerStatus(value))
	for _, candidate := range validCustomerStatuses {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid customer status %q", value)
}
