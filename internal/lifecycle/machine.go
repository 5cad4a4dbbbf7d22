package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/errors"
)

// Column names touched by transitions, used by the executing repository to
// scope the partial update.
const (
	ColumnStatus             = "status"
	ColumnStatusBeforeHold   = "status_before_hold"
	ColumnTorysListChecklist = "torys_list_checklist"
	ColumnInstallDetails     = "install_details"
)

// Change describes the outcome of a transition applied to a customer. The
// machine mutates the in-memory record; the repository persists exactly the
// listed columns guarded by the observed From status.
type Change struct {
	From    enums.CustomerStatus
	To      enums.CustomerStatus
	Columns []string
}

// StatusChanged reports whether the transition moved the record.
func (c Change) StatusChanged() bool {
	return c.From != c.To
}

// NoOp reports whether the transition left the record untouched.
func (c Change) NoOp() bool {
	return len(c.Columns) == 0
}

// Advance moves the customer one stage forward or back in the ordered
// workflow. A record on hold first resolves to its pre-hold stage. Direction
// 0 performs the hold resolution alone. Moving past either end of the
// sequence leaves the stage unchanged.
func Advance(customer *models.Customer, direction int, now time.Time) (Change, error) {
	if direction < -1 || direction > 1 {
		return Change{}, errors.New(errors.CodeValidation, fmt.Sprintf("direction must be -1, 0, or 1, got %d", direction))
	}

	from := enums.NormalizeCustomerStatus(customer.Status)
	resolved := from
	if from == enums.StatusOnHold {
		resolved = resolveHold(customer)
	}

	idx, ok := resolved.WorkflowIndex()
	if !ok {
		return Change{}, errors.New(errors.CodeStateConflict, fmt.Sprintf("cannot advance from status %q", from))
	}

	target := idx + direction
	if target < 0 {
		target = 0
	}
	if last := len(enums.Workflow()) - 1; target > last {
		target = last
	}
	to := enums.Workflow()[target]

	if to == from {
		return Change{From: from, To: from}, nil
	}

	customer.Status = to
	columns := []string{ColumnStatus}
	if stampTorysListEntry(customer, to, now) {
		columns = append(columns, ColumnTorysListChecklist)
	}
	return Change{From: from, To: to, Columns: columns}, nil
}

// EnterHold suspends the record, remembering the current stage. Already-held
// records are left untouched.
func EnterHold(customer *models.Customer) (Change, error) {
	from := enums.NormalizeCustomerStatus(customer.Status)
	if from == enums.StatusOnHold {
		return Change{From: from, To: from}, nil
	}
	if from == enums.StatusArchived {
		return Change{}, errors.New(errors.CodeStateConflict, "archived customers cannot be placed on hold")
	}

	prior := from
	customer.StatusBeforeHold = &prior
	customer.Status = enums.StatusOnHold
	return Change{
		From:    from,
		To:      enums.StatusOnHold,
		Columns: []string{ColumnStatus, ColumnStatusBeforeHold},
	}, nil
}

// LeaveHold restores the pre-hold stage, defaulting to New Order when the
// record never captured one.
func LeaveHold(customer *models.Customer) (Change, error) {
	from := enums.NormalizeCustomerStatus(customer.Status)
	if from != enums.StatusOnHold {
		return Change{From: from, To: from}, nil
	}

	to := resolveHold(customer)
	customer.Status = to
	return Change{From: from, To: to, Columns: []string{ColumnStatus}}, nil
}

// Archive is reachable only from Completed.
func Archive(customer *models.Customer) (Change, error) {
	from := enums.NormalizeCustomerStatus(customer.Status)
	if from != enums.StatusCompleted {
		return Change{}, errors.New(errors.CodeStateConflict, fmt.Sprintf("only completed customers can be archived, status is %q", from))
	}
	customer.Status = enums.StatusArchived
	return Change{From: from, To: enums.StatusArchived, Columns: []string{ColumnStatus}}, nil
}

// Unarchive restores an archived record to Completed.
func Unarchive(customer *models.Customer) (Change, error) {
	from := enums.NormalizeCustomerStatus(customer.Status)
	if from != enums.StatusArchived {
		return Change{}, errors.New(errors.CodeStateConflict, fmt.Sprintf("only archived customers can be unarchived, status is %q", from))
	}
	customer.Status = enums.StatusCompleted
	return Change{From: from, To: enums.StatusCompleted, Columns: []string{ColumnStatus}}, nil
}

// EnterTorysList jumps the record directly into the drop queue. The addedAt
// stamp is written on first entry only; re-saving a record already in the
// stage never re-stamps it.
func EnterTorysList(customer *models.Customer, now time.Time) (Change, error) {
	from := enums.NormalizeCustomerStatus(customer.Status)
	if from == enums.StatusTorysList {
		return Change{From: from, To: from}, nil
	}
	if from == enums.StatusArchived {
		return Change{}, errors.New(errors.CodeStateConflict, "archived customers cannot enter the drop queue")
	}

	customer.Status = enums.StatusTorysList
	columns := []string{ColumnStatus}
	if stampTorysListEntry(customer, enums.StatusTorysList, now) {
		columns = append(columns, ColumnTorysListChecklist)
	}
	return Change{From: from, To: enums.StatusTorysList, Columns: columns}, nil
}

// ReturnToTorysList rejects a splice-stage record back into the drop queue:
// the completion stamp is cleared, the dated reason lands in the drop notes,
// and the record is fast-tracked as priority.
func ReturnToTorysList(customer *models.Customer, reason string, now time.Time) (Change, error) {
	from := enums.NormalizeCustomerStatus(customer.Status)
	if from != enums.StatusNIDReady {
		return Change{}, errors.New(errors.CodeStateConflict, fmt.Sprintf("only splice-stage customers can be returned to the drop queue, status is %q", from))
	}

	customer.Status = enums.StatusTorysList
	customer.TorysListChecklist.CompletedAt = nil
	customer.TorysListChecklist.IsPriority = true
	if customer.TorysListChecklist.AddedAt == nil {
		stamp := now
		customer.TorysListChecklist.AddedAt = &stamp
	}

	note := fmt.Sprintf("%s: %s", now.Format("2006-01-02"), strings.TrimSpace(reason))
	if strings.TrimSpace(reason) == "" {
		note = fmt.Sprintf("%s: returned to drop queue", now.Format("2006-01-02"))
	}
	if customer.InstallDetails.DropNotes == "" {
		customer.InstallDetails.DropNotes = note
	} else {
		customer.InstallDetails.DropNotes += "\n" + note
	}

	return Change{
		From:    from,
		To:      enums.StatusTorysList,
		Columns: []string{ColumnStatus, ColumnTorysListChecklist, ColumnInstallDetails},
	}, nil
}

func resolveHold(customer *models.Customer) enums.CustomerStatus {
	if customer.StatusBeforeHold == nil {
		return enums.StatusNewOrder
	}
	resolved := enums.NormalizeCustomerStatus(*customer.StatusBeforeHold)
	if !resolved.IsStage() {
		return enums.StatusNewOrder
	}
	return resolved
}

func stampTorysListEntry(customer *models.Customer, to enums.CustomerStatus, now time.Time) bool {
	if to != enums.StatusTorysList {
		return false
	}
	if customer.TorysListChecklist.AddedAt != nil {
		return false
	}
	stamp := now
	customer.TorysListChecklist.AddedAt = &stamp
	return true
}
