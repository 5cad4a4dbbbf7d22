package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/pagination"
)

// Repository persists the mail delivery queue rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a mail repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stages a message inside the caller's transaction so the row commits
// with its outbox event.
func (r *Repository) Insert(tx *gorm.DB, message *models.MailMessage) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return tx.Create(message).Error
}

// FindByID loads a single message row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MailMessage, error) {
	var message models.MailMessage
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkSent records a successful delivery and clears any prior error.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MailMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sent":    true,
			"sent_at": at,
			"error":   nil,
		}).Error
}

// MarkFailed records a delivery failure on the row. The worker acks the
// event either way; the row is the failure surface.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.db.WithContext(ctx).
		Model(&models.MailMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sent":  false,
			"error": message,
		}).Error
}

// ListRecent returns the newest messages for the ops dashboard, keyset-paged
// on (created_at, id) descending.
func (r *Repository) ListRecent(ctx context.Context, after *pagination.Cursor, limit int) ([]models.MailMessage, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	query := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if after != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}
	var rows []models.MailMessage
	err := query.Find(&rows).Error
	return rows, err
}
