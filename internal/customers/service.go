package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/internal/lifecycle"
	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/outbox"
)

type customersRepository interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListAll(ctx context.Context) ([]models.Customer, error)
	UpdateColumns(ctx context.Context, customer *models.Customer, columns []string) error
	ApplyTransitionTx(tx *gorm.DB, customer *models.Customer, change lifecycle.Change) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CollectionNotifier is poked after any successful mutation so live
// subscribers get a fresh snapshot.
type CollectionNotifier interface {
	CollectionChanged()
}

// TransitionKind names the lifecycle operations exposed over the API.
type TransitionKind string

const (
	TransitionAdvance           TransitionKind = "advance"
	TransitionHold              TransitionKind = "hold"
	TransitionUnhold            TransitionKind = "unhold"
	TransitionArchive           TransitionKind = "archive"
	TransitionUnarchive         TransitionKind = "unarchive"
	TransitionEnterTorysList    TransitionKind = "enter-torys-list"
	TransitionCompleteDrop      TransitionKind = "complete-drop"
	TransitionReturnToTorysList TransitionKind = "return-to-torys-list"
)

// TransitionInput carries the operation plus its optional arguments.
type TransitionInput struct {
	Kind      TransitionKind
	Direction int
	Reason    string
	Actor     *outbox.ActorRef
}

// Service exposes the customer aggregate's lifecycle and editing semantics.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Patch(ctx context.Context, id uuid.UUID, patch DetailPatch) (*models.Customer, error)
	Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*models.Customer, error)
	ReleaseToSplicer(ctx context.Context, id uuid.UUID, handhole, splicer string) (*models.Customer, error)
	CompleteSplice(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID, actor *outbox.ActorRef) error
}

type service struct {
	repo     customersRepository
	tx       txRunner
	events   eventEmitter
	notifier CollectionNotifier
	now      func() time.Time
}

// NewService builds the customer service backed by the provided repository,
// transaction runner, and outbox emitter.
func NewService(repo customersRepository, tx txRunner, events eventEmitter, notifier CollectionNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		events:   events,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customerName is required")
	}

	customer := &models.Customer{
		CustomerName:       name,
		Address:            strings.TrimSpace(input.Address),
		ServiceOrderNumber: strings.TrimSpace(input.ServiceOrderNumber),
		ServiceSpeed:       strings.TrimSpace(input.ServiceSpeed),
		Status:             enums.StatusNewOrder,
		Contacts:           input.Contacts,
		PrimaryContact:     input.PrimaryContact,
		GeneralNotes:       input.GeneralNotes,
	}
	mirrorPrimaryContact(customer)

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	s.notifyChanged()
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return rows, nil
}

// Patch merges the supplied groups onto the record and writes each touched
// column whole. Groups the patch omits are never written, so two operators
// editing different groups both land.
func (s *service) Patch(ctx context.Context, id uuid.UUID, patch DetailPatch) (*models.Customer, error) {
	if patch.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patch carries no fields")
	}

	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := applyPatch(customer, patch)
	if err := s.repo.UpdateColumns(ctx, customer, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "patch customer")
	}
	s.notifyChanged()
	return customer, nil
}

func (s *service) Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*models.Customer, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	change, err := s.applyMachine(customer, input)
	if err != nil {
		return nil, err
	}
	if change.NoOp() {
		return customer, nil
	}

	if err := s.persistTransition(ctx, customer, change, input.Actor); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return customer, nil
}

// ReleaseToSplicer assigns the splice work item. Handhole and splicer are
// only ever written together; the assigned flag derives from their presence.
func (s *service) ReleaseToSplicer(ctx context.Context, id uuid.UUID, handhole, splicer string) (*models.Customer, error) {
	handhole = strings.TrimSpace(handhole)
	splicer = strings.TrimSpace(splicer)
	if handhole == "" || splicer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handhole and splicer are both required to release")
	}

	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enums.NormalizeCustomerStatus(customer.Status) != enums.StatusNIDReady {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("only splice-stage customers can be released, status is %q", customer.Status))
	}

	now := s.now()
	customer.SplicingDetails.Handhole = handhole
	customer.SplicingDetails.AssignedSplicer = splicer
	customer.SplicingDetails.Assigned = true
	customer.SplicingDetails.AssignedAt = &now

	if err := s.repo.UpdateColumns(ctx, customer, []string{"splicing_details"}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release to splicer")
	}
	s.notifyChanged()
	return customer, nil
}

// CompleteSplice marks the assigned splice work item done.
func (s *service) CompleteSplice(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.SplicingDetails.Assigned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "splice is not assigned")
	}

	now := s.now()
	customer.SplicingDetails.Completed = true
	customer.SplicingDetails.CompletedAt = &now

	if err := s.repo.UpdateColumns(ctx, customer, []string{"splicing_details"}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete splice")
	}
	s.notifyChanged()
	return customer, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actor *outbox.ActorRef) error {
	customer, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, customer.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	s.notifyChanged()
	return nil
}

func (s *service) applyMachine(customer *models.Customer, input TransitionInput) (lifecycle.Change, error) {
	now := s.now()
	switch input.Kind {
	case TransitionAdvance:
		return lifecycle.Advance(customer, input.Direction, now)
	case TransitionHold:
		return lifecycle.EnterHold(customer)
	case TransitionUnhold:
		return lifecycle.LeaveHold(customer)
	case TransitionArchive:
		return lifecycle.Archive(customer)
	case TransitionUnarchive:
		return lifecycle.Unarchive(customer)
	case TransitionEnterTorysList:
		return lifecycle.EnterTorysList(customer, now)
	case TransitionCompleteDrop:
		return s.completeDrop(customer, now)
	case TransitionReturnToTorysList:
		return lifecycle.ReturnToTorysList(customer, input.Reason, now)
	default:
		return lifecycle.Change{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown transition %q", input.Kind))
	}
}

// completeDrop stamps the drop completion and moves the record into the
// splice queue in one change.
func (s *service) completeDrop(customer *models.Customer, now time.Time) (lifecycle.Change, error) {
	if enums.NormalizeCustomerStatus(customer.Status) != enums.StatusTorysList {
		return lifecycle.Change{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("only drop-queue customers can be marked done, status is %q", customer.Status))
	}

	change, err := lifecycle.Advance(customer, 1, now)
	if err != nil {
		return lifecycle.Change{}, err
	}
	stamp := now
	customer.TorysListChecklist.CompletedAt = &stamp

	columns := change.Columns
	if !contains(columns, lifecycle.ColumnTorysListChecklist) {
		columns = append(columns, lifecycle.ColumnTorysListChecklist)
	}
	change.Columns = columns
	return change, nil
}

func (s *service) persistTransition(ctx context.Context, customer *models.Customer, change lifecycle.Change, actor *outbox.ActorRef) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.ApplyTransitionTx(tx, customer, change); err != nil {
			return err
		}
		if !change.StatusChanged() {
			return nil
		}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCustomerStageChanged,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   customer.ID,
			Actor:         actor,
			Data: outbox.StageChangedData{
				CustomerID:   customer.ID,
				CustomerName: customer.CustomerName,
				From:         change.From,
				To:           change.To,
			},
		}); err != nil {
			return err
		}
		if change.To != enums.StatusArchived {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCustomerArchived,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   customer.ID,
			Actor:         actor,
			Data: outbox.CustomerArchivedData{
				CustomerID:   customer.ID,
				CustomerName: customer.CustomerName,
			},
		})
	})
	if err != nil {
		if errors.Is(err, ErrStaleStatus) {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "customer was moved by another operator")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist transition")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) notifyChanged() {
	if s.notifier != nil {
		s.notifier.CollectionChanged()
	}
}

// applyPatch merges supplied groups onto the record and returns the column
// list to persist.
func applyPatch(customer *models.Customer, patch DetailPatch) []string {
	var columns []string

	if patch.CustomerName != nil {
		customer.CustomerName = strings.TrimSpace(*patch.CustomerName)
		columns = append(columns, "customer_name")
	}
	if patch.Address != nil {
		customer.Address = strings.TrimSpace(*patch.Address)
		columns = append(columns, "address")
	}
	if patch.ServiceOrderNumber != nil {
		customer.ServiceOrderNumber = strings.TrimSpace(*patch.ServiceOrderNumber)
		columns = append(columns, "service_order_number")
	}
	if patch.ServiceSpeed != nil {
		customer.ServiceSpeed = strings.TrimSpace(*patch.ServiceSpeed)
		columns = append(columns, "service_speed")
	}
	if patch.GeneralNotes != nil {
		customer.GeneralNotes = *patch.GeneralNotes
		columns = append(columns, "general_notes")
	}
	if patch.ExemptFromStats != nil {
		customer.ExemptFromStats = *patch.ExemptFromStats
		columns = append(columns, "exempt_from_stats")
	}
	if patch.Contacts != nil {
		customer.Contacts = *patch.Contacts
		columns = append(columns, "contacts")
		if mirrorPrimaryContact(customer) && patch.PrimaryContact == nil {
			columns = append(columns, "primary_contact")
		}
	}
	if patch.PrimaryContact != nil {
		customer.PrimaryContact = *patch.PrimaryContact
		columns = append(columns, "primary_contact")
	}
	if patch.PreInstallChecklist != nil {
		customer.PreInstallChecklist = *patch.PreInstallChecklist
		columns = append(columns, "pre_install_checklist")
	}
	if patch.TorysListChecklist != nil {
		merged := *patch.TorysListChecklist
		// the entry stamp is owned by the state machine, never by a form save
		merged.AddedAt = customer.TorysListChecklist.AddedAt
		customer.TorysListChecklist = merged
		columns = append(columns, "torys_list_checklist")
	}
	if patch.InstallReadyChecklist != nil {
		customer.InstallReadyChecklist = *patch.InstallReadyChecklist
		columns = append(columns, "install_ready_checklist")
	}
	if patch.PostInstallChecklist != nil {
		customer.PostInstallChecklist = *patch.PostInstallChecklist
		columns = append(columns, "post_install_checklist")
	}
	if patch.InstallDetails != nil {
		customer.InstallDetails = *patch.InstallDetails
		columns = append(columns, "install_details")
	}
	if patch.SplicingDetails != nil {
		merged := *patch.SplicingDetails
		merged.Assigned = strings.TrimSpace(merged.Handhole) != "" && strings.TrimSpace(merged.AssignedSplicer) != ""
		customer.SplicingDetails = merged
		columns = append(columns, "splicing_details")
	}

	return columns
}

// mirrorPrimaryContact copies the first contact's number into the primary
// phone slot. Returns true when the primary contact changed.
func mirrorPrimaryContact(customer *models.Customer) bool {
	if len(customer.Contacts) == 0 {
		return false
	}
	first := customer.Contacts[0]
	if first.Number == "" || customer.PrimaryContact.Phone == first.Number {
		return false
	}
	customer.PrimaryContact.Phone = first.Number
	return true
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
