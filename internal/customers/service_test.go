package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/internal/lifecycle"
	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/outbox"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

type stubRepo struct {
	customers     map[uuid.UUID]*models.Customer
	updatedCols   []string
	transitionErr error
	deleted       []uuid.UUID
}

func newStubRepo(rows ...*models.Customer) *stubRepo {
	repo := &stubRepo{customers: map[uuid.UUID]*models.Customer{}}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		repo.customers[row.ID] = row
	}
	return repo
}

func (s *stubRepo) Create(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	s.customers[customer.ID] = customer
	return customer, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, ok := s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *customer
	return &clone, nil
}

func (s *stubRepo) ListAll(_ context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	for _, customer := range s.customers {
		rows = append(rows, *customer)
	}
	return rows, nil
}

func (s *stubRepo) UpdateColumns(_ context.Context, customer *models.Customer, columns []string) error {
	s.updatedCols = append(s.updatedCols, columns...)
	s.customers[customer.ID] = customer
	return nil
}

func (s *stubRepo) ApplyTransitionTx(_ *gorm.DB, customer *models.Customer, change lifecycle.Change) error {
	if s.transitionErr != nil {
		return s.transitionErr
	}
	s.updatedCols = append(s.updatedCols, change.Columns...)
	s.customers[customer.ID] = customer
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.customers, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubNotifier struct {
	changes int
}

func (s *stubNotifier) CollectionChanged() { s.changes++ }

func newTestService(t *testing.T, repo *stubRepo) (Service, *stubEmitter, *stubNotifier) {
	t.Helper()
	emitter := &stubEmitter{}
	notifier := &stubNotifier{}
	svc, err := NewService(repo, stubTxRunner{}, emitter, notifier)
	require.NoError(t, err)
	return svc, emitter, notifier
}

func TestCreateRequiresName(t *testing.T) {
	svc, _, _ := newTestService(t, newStubRepo())
	_, err := svc.Create(context.Background(), CreateCustomerInput{CustomerName: "   "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateMirrorsFirstContactIntoPrimaryPhone(t *testing.T) {
	svc, _, notifier := newTestService(t, newStubRepo())

	created, err := svc.Create(context.Background(), CreateCustomerInput{
		CustomerName: "Jane Smith",
		Contacts: []types.Contact{
			{ID: uuid.New(), Type: "Cell", Number: "574-555-0101"},
			{ID: uuid.New(), Type: "Home", Number: "574-555-0202"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.StatusNewOrder, created.Status)
	assert.Equal(t, "574-555-0101", created.PrimaryContact.Phone)
	assert.Equal(t, 1, notifier.changes)
}

func TestTransitionAdvanceEmitsStageChangedEvent(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNewOrder}
	svc, emitter, notifier := newTestService(t, newStubRepo(customer))

	updated, err := svc.Transition(context.Background(), customer.ID, TransitionInput{
		Kind:      TransitionAdvance,
		Direction: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.StatusSiteSurveyReady, updated.Status)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.EventCustomerStageChanged, emitter.events[0].EventType)
	data, ok := emitter.events[0].Data.(outbox.StageChangedData)
	require.True(t, ok)
	assert.Equal(t, enums.StatusNewOrder, data.From)
	assert.Equal(t, enums.StatusSiteSurveyReady, data.To)
	assert.Equal(t, 1, notifier.changes)
}

func TestTransitionNoOpEmitsNothing(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusCompleted}
	svc, emitter, notifier := newTestService(t, newStubRepo(customer))

	updated, err := svc.Transition(context.Background(), customer.ID, TransitionInput{
		Kind:      TransitionAdvance,
		Direction: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.StatusCompleted, updated.Status)
	assert.Empty(t, emitter.events)
	assert.Zero(t, notifier.changes)
}

func TestTransitionLostRaceSurfacesStateConflict(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNewOrder}
	repo := newStubRepo(customer)
	repo.transitionErr = ErrStaleStatus
	svc, _, _ := newTestService(t, repo)

	_, err := svc.Transition(context.Background(), customer.ID, TransitionInput{
		Kind:      TransitionAdvance,
		Direction: 1,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestTransitionArchiveEmitsArchivedEvent(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusCompleted}
	svc, emitter, _ := newTestService(t, newStubRepo(customer))

	_, err := svc.Transition(context.Background(), customer.ID, TransitionInput{Kind: TransitionArchive})
	require.NoError(t, err)

	require.Len(t, emitter.events, 2)
	assert.Equal(t, enums.EventCustomerStageChanged, emitter.events[0].EventType)
	assert.Equal(t, enums.EventCustomerArchived, emitter.events[1].EventType)
}

func TestTransitionCompleteDropStampsCompletion(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusTorysList}
	svc, _, _ := newTestService(t, newStubRepo(customer))

	updated, err := svc.Transition(context.Background(), customer.ID, TransitionInput{Kind: TransitionCompleteDrop})
	require.NoError(t, err)
	assert.Equal(t, enums.StatusNIDReady, updated.Status)
	require.NotNil(t, updated.TorysListChecklist.CompletedAt)
}

func TestTransitionCompleteDropRejectsWrongStage(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNewOrder}
	svc, _, _ := newTestService(t, newStubRepo(customer))

	_, err := svc.Transition(context.Background(), customer.ID, TransitionInput{Kind: TransitionCompleteDrop})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestTransitionUnknownKindIsValidationError(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNewOrder}
	svc, _, _ := newTestService(t, newStubRepo(customer))

	_, err := svc.Transition(context.Background(), customer.ID, TransitionInput{Kind: "teleport"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPatchMergesOnlySuppliedGroups(t *testing.T) {
	added := time.Now().Add(-48 * time.Hour)
	customer := &models.Customer{
		ID:           uuid.New(),
		CustomerName: "Jane Smith",
		Status:       enums.StatusTorysList,
		TorysListChecklist: types.TorysListChecklist{
			AddedAt: &added,
			Notes:   "old note",
		},
	}
	repo := newStubRepo(customer)
	svc, _, _ := newTestService(t, repo)

	notes := "locate done, flags placed"
	updated, err := svc.Patch(context.Background(), customer.ID, DetailPatch{
		TorysListChecklist: &types.TorysListChecklist{
			LocateDone: true,
			Notes:      notes,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"torys_list_checklist"}, repo.updatedCols)
	assert.True(t, updated.TorysListChecklist.LocateDone)
	assert.Equal(t, notes, updated.TorysListChecklist.Notes)
	// the entry stamp survives a form save that omitted it
	require.NotNil(t, updated.TorysListChecklist.AddedAt)
	assert.True(t, updated.TorysListChecklist.AddedAt.Equal(added))
}

func TestPatchRejectsEmptyPatch(t *testing.T) {
	svc, _, _ := newTestService(t, newStubRepo())
	_, err := svc.Patch(context.Background(), uuid.New(), DetailPatch{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPatchDerivesSplicingAssignment(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNIDReady}
	svc, _, _ := newTestService(t, newStubRepo(customer))

	updated, err := svc.Patch(context.Background(), customer.ID, DetailPatch{
		SplicingDetails: &types.SplicingDetails{
			Handhole:        "HH-14",
			AssignedSplicer: "Mike",
		},
	})
	require.NoError(t, err)
	assert.True(t, updated.SplicingDetails.Assigned)

	// dropping the splicer un-assigns
	updated, err = svc.Patch(context.Background(), customer.ID, DetailPatch{
		SplicingDetails: &types.SplicingDetails{Handhole: "HH-14"},
	})
	require.NoError(t, err)
	assert.False(t, updated.SplicingDetails.Assigned)
}

func TestReleaseToSplicerRequiresBothFields(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNIDReady}
	svc, _, _ := newTestService(t, newStubRepo(customer))

	_, err := svc.ReleaseToSplicer(context.Background(), customer.ID, "HH-14", "")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	updated, err := svc.ReleaseToSplicer(context.Background(), customer.ID, "HH-14", "Mike")
	require.NoError(t, err)
	assert.True(t, updated.SplicingDetails.Assigned)
	assert.Equal(t, "Mike", updated.SplicingDetails.AssignedSplicer)
	require.NotNil(t, updated.SplicingDetails.AssignedAt)
}

func TestReleaseToSplicerRejectsWrongStage(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusTorysList}
	svc, _, _ := newTestService(t, newStubRepo(customer))

	_, err := svc.ReleaseToSplicer(context.Background(), customer.ID, "HH-14", "Mike")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCompleteSpliceRequiresAssignment(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNIDReady}
	svc, _, _ := newTestService(t, newStubRepo(customer))

	_, err := svc.CompleteSplice(context.Background(), customer.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestDeleteRemovesCustomer(t *testing.T) {
	customer := &models.Customer{ID: uuid.New(), CustomerName: "Jane Smith", Status: enums.StatusNewOrder}
	repo := newStubRepo(customer)
	svc, _, notifier := newTestService(t, repo)

	require.NoError(t, svc.Delete(context.Background(), customer.ID, nil))
	assert.Equal(t, []uuid.UUID{customer.ID}, repo.deleted)
	assert.Equal(t, 1, notifier.changes)

	_, err := svc.Get(context.Background(), customer.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestStagePageLookup(t *testing.T) {
	before := enums.StatusNIDReady
	cases := []struct {
		name     string
		customer *models.Customer
		want     StagePage
	}{
		{"new order", &models.Customer{Status: enums.StatusNewOrder}, PageNewOrder},
		{"drops", &models.Customer{Status: enums.StatusTorysList}, PageTorysList},
		{"legacy spelling", &models.Customer{Status: enums.CustomerStatus("Tory's List")}, PageTorysList},
		{"completed", &models.Customer{Status: enums.StatusCompleted}, PageFinal},
		{"archived shares final page", &models.Customer{Status: enums.StatusArchived}, PageFinal},
		{"on hold shows pre-hold page", &models.Customer{Status: enums.StatusOnHold, StatusBeforeHold: &before}, PageNIDReady},
		{"on hold without memory", &models.Customer{Status: enums.StatusOnHold}, PageNewOrder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StagePageFor(tc.customer))
		})
	}
}
