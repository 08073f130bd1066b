// Package accounts implements user, login, two-factor and role
// administration on top of the users and rbac repositories.
package accounts

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/database"
	"github.com/mrlokans/hymnal/internal/database/rbac"
	"github.com/mrlokans/hymnal/internal/database/users"
	"github.com/mrlokans/hymnal/internal/storage"
)

const (
	DefaultUserLimit   = 10
	DefaultRoleLimit   = 100
	MaxEmailLength     = 254
	MaxRoleNameLength  = 100
	MaxDescriptionSize = 500
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Options carries the collaborators that are not repositories.
type Options struct {
	Tokens     *auth.TokenIssuer
	TOTP       *auth.TOTP
	Policy     auth.Policy
	BcryptCost int
}

type Service struct {
	db         *database.Database
	users      *users.Repository
	rbac       *rbac.Repository
	audit      *audit.Service
	blobs      storage.BlobStore
	tokens     *auth.TokenIssuer
	totp       *auth.TOTP
	policy     auth.Policy
	bcryptCost int
}

func NewService(db *database.Database, auditService *audit.Service, blobs storage.BlobStore, opts Options) *Service {
	policy := opts.Policy
	if policy == nil {
		policy = auth.FlagPolicy{}
	}
	return &Service{
		db:         db,
		users:      users.NewRepository(db.DB),
		rbac:       rbac.NewRepository(db.DB),
		audit:      auditService,
		blobs:      blobs,
		tokens:     opts.Tokens,
		totp:       opts.TOTP,
		policy:     policy,
		bcryptCost: opts.BcryptCost,
	}
}

// Users exposes the repository the auth middleware loads actors from.
func (s *Service) Users() *users.Repository {
	return s.users
}

// SeedPermissions makes sure a permission row exists for every action.
func (s *Service) SeedPermissions(ctx context.Context) error {
	if err := s.rbac.SeedPermissions(ctx, auth.PermissionNames()); err != nil {
		return apperr.FromDB(err, "permission")
	}
	return nil
}

func validateUsername(username string) string {
	if !usernamePattern.MatchString(username) {
		return "must be 3-50 characters: letters, digits, underscore or hyphen"
	}
	return ""
}

func validateEmail(email string) string {
	if len(email) > MaxEmailLength || !emailPattern.MatchString(email) {
		return "invalid email format"
	}
	return ""
}

func validatePassword(password string) string {
	switch err := auth.ValidatePassword(password); {
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "must be at least 8 characters"
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "must be at most 72 bytes"
	}
	return ""
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if msg := validatePassword(password); msg != "" {
			return "", apperr.ValidationField("password", msg)
		}
		return "", apperr.Internal("failed to hash password", err)
	}
	return hash, nil
}

// removeBlob deletes a stale upload. Failures are logged and ignored.
func (s *Service) removeBlob(ctx context.Context, path *string) {
	if path == nil || *path == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, *path); err != nil {
		log.Warn("Failed to remove stale file", "path", *path, "err", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
