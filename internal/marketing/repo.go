package marketing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

// insertBatchSize caps a single insert statement during a dataset replace.
const insertBatchSize = 400

// Repository exposes marketing point persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a marketing point repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll swaps the whole dataset: delete everything, insert the new
// points in capped batches, all in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, points []models.MarketingPoint) error {
	for i := range points {
		if points[i].ID == uuid.Nil {
			points[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.MarketingPoint{}).Error; err != nil {
			return err
		}
		if len(points) == 0 {
			return nil
		}
		return tx.CreateInBatches(points, insertBatchSize).Error
	})
}

// ListAll returns the whole dataset.
func (r *Repository) ListAll(ctx context.Context) ([]models.MarketingPoint, error) {
	var rows []models.MarketingPoint
	err := r.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}

// ListInBounds returns the points inside the rectangle, riding the lat/lng
// indexes.
func (r *Repository) ListInBounds(ctx context.Context, box types.BoundingBox) ([]models.MarketingPoint, error) {
	var rows []models.MarketingPoint
	err := r.db.WithContext(ctx).
		Where("lat >= ? AND lat <= ?", box.SouthWest.Lat, box.NorthEast.Lat).
		Where("lng >= ? AND lng <= ?", box.SouthWest.Lng, box.NorthEast.Lng).
		Find(&rows).Error
	return rows, err
}

// Count returns the dataset size.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MarketingPoint{}).Count(&count).Error
	return count, err
}
