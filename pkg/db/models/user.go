package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/northfiber/fiberops-backend/pkg/enums"
)

// User is an operator account. Only addresses on the corporate mail domain
// may register or sign in.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	DisplayName  string         `gorm:"column:display_name;type:text"`
	PasswordHash string         `gorm:"column:password_hash;type:text;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'operator'"`
	// SplicerName links a splicer login to its assignment tab.
	SplicerName *string   `gorm:"column:splicer_name;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
