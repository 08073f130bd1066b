package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/database"
	"github.com/mrlokans/hymnal/internal/entities"
	"github.com/mrlokans/hymnal/internal/optional"
	"github.com/mrlokans/hymnal/internal/storage"
)

type CreateUserInput struct {
	Username    string `json:"username" form:"username" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required"`
	Password    string `json:"password" form:"password" binding:"required"`
	FirstName   string `json:"first_name" form:"first_name" binding:"max=100"`
	LastName    string `json:"last_name" form:"last_name" binding:"max=100"`
	OtherName   string `json:"other_name" form:"other_name" binding:"max=100"`
	IsStaff     bool   `json:"is_staff" form:"is_staff"`
	IsSuperuser bool   `json:"is_superuser" form:"is_superuser"`
}

// UpdateUserInput is a partial update. Name fields present as null are
// cleared; every other field rejects null.
type UpdateUserInput struct {
	Email       optional.Value[string] `json:"email"`
	Username    optional.Value[string] `json:"username"`
	FirstName   optional.Value[string] `json:"first_name"`
	LastName    optional.Value[string] `json:"last_name"`
	OtherName   optional.Value[string] `json:"other_name"`
	Password    optional.Value[string] `json:"password"`
	IsActive    optional.Value[bool]   `json:"is_active"`
	IsStaff     optional.Value[bool]   `json:"is_staff"`
	IsSuperuser optional.Value[bool]   `json:"is_superuser"`
}

func (in *CreateUserInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.OtherName = strings.TrimSpace(in.OtherName)
}

func (in CreateUserInput) validate() error {
	fields := map[string]string{}
	if msg := validateUsername(in.Username); msg != "" {
		fields["username"] = msg
	}
	if msg := validateEmail(in.Email); msg != "" {
		fields["email"] = msg
	}
	if msg := validatePassword(in.Password); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid user", fields)
	}
	return nil
}

// Signup creates a regular user. Elevated flags cannot be self-granted.
func (s *Service) Signup(ctx context.Context, in CreateUserInput) (*entities.User, error) {
	if in.IsStaff || in.IsSuperuser {
		return nil, apperr.Forbidden("cannot grant staff or superuser status on signup")
	}
	return s.createUser(ctx, nil, in)
}

// Register creates a user on behalf of an administrator. Only a superuser
// may create another superuser.
func (s *Service) Register(ctx context.Context, actor *entities.User, in CreateUserInput) (*entities.User, error) {
	if in.IsSuperuser && (actor == nil || !actor.IsSuperuser) {
		return nil, apperr.Forbidden("only superusers can create superusers")
	}
	return s.createUser(ctx, actor, in)
}

// CreateSuperuser creates an active staff superuser without an acting user.
func (s *Service) CreateSuperuser(ctx context.Context, username, email, password string) (*entities.User, error) {
	return s.createUser(ctx, nil, CreateUserInput{
		Username:    username,
		Email:       email,
		Password:    password,
		IsStaff:     true,
		IsSuperuser: true,
	})
}

func (s *Service) createUser(ctx context.Context, actor *entities.User, in CreateUserInput) (*entities.User, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		OtherName:      in.OtherName,
		IsActive:       true,
		IsStaff:        in.IsStaff,
		IsSuperuser:    in.IsSuperuser,
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		taken, err := repo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email, 0)
		if err != nil {
			return apperr.FromDB(err, "user")
		}
		if taken {
			return apperr.Conflict("username or email already registered")
		}
		if err := repo.Create(ctx, user); err != nil {
			return apperr.FromDB(err, "user")
		}

		actorID := audit.ActorID(actor)
		if actorID == nil {
			actorID = audit.ActorID(user)
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  actorID,
			Action:   entities.AuditCreateUser,
			Details:  fmt.Sprintf("Created user %s, is_superuser=%t", user.Username, user.IsSuperuser),
			Metadata: map[string]any{"user_id": user.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns an active user. Soft-deleted users are not found.
func (s *Service) GetUser(ctx context.Context, id uint) (*entities.User, error) {
	user, err := s.users.GetActiveByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return user, nil
}

// ListUsers returns a page of active users.
func (s *Service) ListUsers(ctx context.Context, skip, limit int) ([]entities.User, error) {
	if limit <= 0 {
		limit = DefaultUserLimit
	}
	list, err := s.users.ListActive(ctx, skip, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return list, nil
}

// UpdateUser applies the fields present in in to an active user.
func (s *Service) UpdateUser(ctx context.Context, actor *entities.User, id uint, in UpdateUserInput) (*entities.User, error) {
	for field, null := range map[string]bool{
		"email":        in.Email.IsNull(),
		"username":     in.Username.IsNull(),
		"password":     in.Password.IsNull(),
		"is_active":    in.IsActive.IsNull(),
		"is_staff":     in.IsStaff.IsNull(),
		"is_superuser": in.IsSuperuser.IsNull(),
	} {
		if null {
			return nil, apperr.ValidationField(field, "must not be null")
		}
	}
	if in.IsSuperuser.IsSet() && (actor == nil || !actor.IsSuperuser) {
		return nil, apperr.Forbidden("only superusers can modify superuser status")
	}

	fields := map[string]string{}
	if v, ok := in.Username.Get(); ok {
		if msg := validateUsername(strings.TrimSpace(v)); msg != "" {
			fields["username"] = msg
		}
	}
	if v, ok := in.Email.Get(); ok {
		if msg := validateEmail(normalizeEmail(v)); msg != "" {
			fields["email"] = msg
		}
	}
	var hash string
	if v, ok := in.Password.Get(); ok {
		if msg := validatePassword(v); msg != "" {
			fields["password"] = msg
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid user", fields)
	}
	if v, ok := in.Password.Get(); ok {
		var err error
		if hash, err = s.hashPassword(v); err != nil {
			return nil, err
		}
	}

	var user *entities.User
	var changed []string
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		var err error
		user, err = repo.GetActiveByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "user")
		}
		if user.IsSuperuser && (actor == nil || !actor.IsSuperuser) {
			return apperr.Forbidden("only superusers can modify a superuser")
		}

		if v, ok := in.Username.Get(); ok {
			user.Username = strings.TrimSpace(v)
			changed = append(changed, "username")
		}
		if v, ok := in.Email.Get(); ok {
			user.Email = normalizeEmail(v)
			changed = append(changed, "email")
		}
		if in.Username.IsSet() || in.Email.IsSet() {
			taken, err := repo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email, user.ID)
			if err != nil {
				return apperr.FromDB(err, "user")
			}
			if taken {
				return apperr.Conflict("username or email already registered")
			}
		}
		if in.FirstName.IsSet() {
			v, _ := in.FirstName.Get()
			user.FirstName = strings.TrimSpace(v)
			changed = append(changed, "first_name")
		}
		if in.LastName.IsSet() {
			v, _ := in.LastName.Get()
			user.LastName = strings.TrimSpace(v)
			changed = append(changed, "last_name")
		}
		if in.OtherName.IsSet() {
			v, _ := in.OtherName.Get()
			user.OtherName = strings.TrimSpace(v)
			changed = append(changed, "other_name")
		}
		if hash != "" {
			user.HashedPassword = hash
			changed = append(changed, "password")
		}
		if v, ok := in.IsActive.Get(); ok {
			user.IsActive = v
			if !v && user.DeletedAt == nil {
				now := time.Now().UTC()
				user.DeletedAt = &now
			} else if v {
				user.DeletedAt = nil
			}
			changed = append(changed, "is_active")
		}
		if v, ok := in.IsStaff.Get(); ok {
			user.IsStaff = v
			changed = append(changed, "is_staff")
		}
		if v, ok := in.IsSuperuser.Get(); ok {
			user.IsSuperuser = v
			changed = append(changed, "is_superuser")
		}

		if err := repo.Save(ctx, user); err != nil {
			return apperr.FromDB(err, "user")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditUpdateUser,
			Details:  fmt.Sprintf("Updated user %s, is_superuser=%t", user.Username, user.IsSuperuser),
			Metadata: map[string]any{"user_id": user.ID, "fields": changed},
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserImage stores a JPEG or PNG profile image. Users may always
// update their own image; anyone else needs update_user.
func (s *Service) UpdateUserImage(ctx context.Context, actor *entities.User, id uint, data []byte, contentType string) (*entities.User, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	if actor.ID != id {
		ok, err := s.policy.Can(ctx, actor, auth.ActionUpdateUser)
		if err != nil {
			return nil, apperr.Internal("failed to evaluate permissions", err)
		}
		if !ok {
			return nil, apperr.Forbidden("insufficient permissions")
		}
	}

	ext, err := storage.ImageExtension(contentType)
	if err != nil {
		return nil, apperr.ValidationField("file", "only JPEG and PNG images are allowed")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("users/user_%d_%s.%s", id, uuid.NewString(), ext)
	path, err := s.blobs.Save(ctx, key, data, contentType)
	if err != nil {
		return nil, apperr.Internal("failed to store image", err)
	}

	var user *entities.User
	var previous *string
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		var err error
		user, err = repo.GetActiveByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "user")
		}
		previous = user.ImagePath
		user.ImagePath = &path

		if err := repo.Save(ctx, user); err != nil {
			return apperr.FromDB(err, "user")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditUpdateUserImage,
			Details:  fmt.Sprintf("Updated image for user %s", user.Username),
			Metadata: map[string]any{"user_id": user.ID, "path": path},
		})
	})
	if err != nil {
		return nil, err
	}

	s.removeBlob(ctx, previous)
	return user, nil
}

// DeleteUser soft-deletes an active user. Superusers cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, actor *entities.User, id uint) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).GetActiveByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "user")
		}
		if user.IsSuperuser {
			return apperr.Forbidden("cannot delete superuser")
		}
		if err := database.Remove(tx.WithContext(ctx), user); err != nil {
			return apperr.FromDB(err, "user")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditDeleteUser,
			Details:  fmt.Sprintf("Soft-deleted user %s", user.Username),
			Metadata: map[string]any{"user_id": user.ID},
		})
	})
}
