package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/internal/users"
	pkgAuth "github.com/northfiber/fiberops-backend/pkg/auth"
	"github.com/northfiber/fiberops-backend/pkg/config"
	"github.com/northfiber/fiberops-backend/pkg/db"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/security"
)

// RegisterService handles operator onboarding.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
	AuthConfig     config.AuthConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
	authCfg     config.AuthConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
		authCfg:     params.AuthConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !pkgAuth.AllowedMailDomain(email, s.authCfg.AllowedMailDomain) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "registration is limited to the corporate mail domain")
	}

	role := enums.UserRoleOperator
	if trimmed := strings.TrimSpace(req.Role); trimmed != "" {
		parsed, err := enums.ParseUserRole(trimmed)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = parsed
	}

	splicerName := normalizeSplicerName(req.SplicerName)
	if role == enums.UserRoleSplicer && splicerName == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "splicer accounts need a splicer_name")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		if _, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			Role:         role,
			SplicerName:  splicerName,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return nil
	})
}

func normalizeSplicerName(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
