package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/internal/lifecycle"
	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
)

// ErrStaleStatus is returned when a guarded transition matched no row: the
// record moved under the caller between read and write.
var ErrStaleStatus = errors.New("customer status changed concurrently")

// legacyTorysList still appears in rows written by the old client; guarded
// updates must match either spelling.
const legacyTorysList = "Tory's List"

// Repository exposes customer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customer repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new customer row.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// FindByID loads a single customer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListAll returns the full collection, newest first. The dashboard works on
// hundreds of records, so every screen gets the whole set.
func (r *Repository) ListAll(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// UpdateColumns writes the named columns from the in-memory record. Used by
// detail patches, where last-write-wins per group is the agreed model.
// Select on a struct update keeps the jsonb serializers in play, which a
// map-based update would bypass.
func (r *Repository) UpdateColumns(ctx context.Context, customer *models.Customer, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Select(columns).
		Updates(customer).Error
}

// ApplyTransitionTx persists a lifecycle change inside the caller's
// transaction, guarded by the status the machine observed. Zero rows
// affected means another operator moved the record first.
func (r *Repository) ApplyTransitionTx(tx *gorm.DB, customer *models.Customer, change lifecycle.Change) error {
	if tx == nil {
		return errors.New("transaction required")
	}

	result := tx.Model(&models.Customer{}).
		Where("id = ? AND status IN ?", customer.ID, statusMatchValues(change.From)).
		Select(change.Columns).
		Updates(customer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ClearAllCoordinates nulls every cached coordinate ahead of a full replot.
func (r *Repository) ClearAllCoordinates(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("coordinates IS NOT NULL").
		Update("coordinates", nil).Error
}

// SaveCoordinates persists a resolved coordinate pair onto the record.
func (r *Repository) SaveCoordinates(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Select("coordinates").
		Updates(customer).Error
}

// Delete removes a customer row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

// statusMatchValues widens the guard to the legacy spelling when the
// observed status is the drop queue.
func statusMatchValues(status enums.CustomerStatus) []string {
	if enums.NormalizeCustomerStatus(status) == enums.StatusTorysList {
		return []string{string(enums.StatusTorysList), legacyTorysList}
	}
	return []string{string(status)}
}
