package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/entities"
)

// MsgBadCredentials is the message for every failed password check, so
// callers cannot tell unknown users from wrong passwords.
const MsgBadCredentials = "incorrect username or password"

type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	TOTPCode string `json:"totp_code" form:"totp_code"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// Login checks the credentials, and the TOTP code when two-factor is
// enabled, and issues an access token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	login := strings.TrimSpace(in.Username)
	if strings.Contains(login, "@") {
		login = normalizeEmail(login)
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated(MsgBadCredentials)
		}
		return nil, apperr.FromDB(err, "user")
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated(MsgBadCredentials)
	}
	if err := auth.CheckPassword(in.Password, user.HashedPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, apperr.Unauthenticated(MsgBadCredentials)
		}
		return nil, apperr.Internal("failed to verify password", err)
	}

	if user.TOTPEnabled {
		if strings.TrimSpace(in.TOTPCode) == "" {
			return nil, apperr.Unauthenticated("two-factor code required")
		}
		if user.TOTPSecret == nil || !s.totp.Verify(*user.TOTPSecret, in.TOTPCode) {
			return nil, apperr.Unauthenticated("invalid two-factor code")
		}
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID: audit.ActorID(user),
		Action:  entities.AuditLogin,
		Details: fmt.Sprintf("User %s logged in", user.Username),
	})

	return &TokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenTypeBearer,
		ExpiresIn:   int(s.tokens.Expiry().Seconds()),
	}, nil
}

// Me reloads the actor so the response reflects stored state.
func (s *Service) Me(ctx context.Context, actor *entities.User) (*entities.User, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	return s.GetUser(ctx, actor.ID)
}

// Setup2FA stores a fresh TOTP secret for the actor. Two-factor stays
// disabled until Verify2FA confirms a code.
func (s *Service) Setup2FA(ctx context.Context, actor *entities.User) (*TwoFactorSetup, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("not authenticated")
	}

	var setup *TwoFactorSetup
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		user, err := repo.GetActiveByID(ctx, actor.ID)
		if err != nil {
			return apperr.FromDB(err, "user")
		}

		secret, url, err := s.totp.GenerateSecret(user.Username)
		if err != nil {
			return apperr.Internal("failed to generate two-factor secret", err)
		}
		user.TOTPSecret = &secret
		user.TOTPEnabled = false
		if err := repo.Save(ctx, user); err != nil {
			return apperr.FromDB(err, "user")
		}

		setup = &TwoFactorSetup{Secret: secret, OTPAuthURL: url}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditSetup2FA,
			Details:  fmt.Sprintf("Set up 2FA for user %s", user.Username),
			Metadata: map[string]any{"user_id": user.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return setup, nil
}

// Verify2FA checks a code against the stored secret and enables two-factor
// on success.
func (s *Service) Verify2FA(ctx context.Context, actor *entities.User, code string) error {
	if actor == nil {
		return apperr.Unauthenticated("not authenticated")
	}

	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		user, err := repo.GetActiveByID(ctx, actor.ID)
		if err != nil {
			return apperr.FromDB(err, "user")
		}
		if user.TOTPSecret == nil || *user.TOTPSecret == "" {
			return apperr.ValidationField("code", "two-factor authentication is not set up")
		}
		if !s.totp.Verify(*user.TOTPSecret, code) {
			return apperr.Unauthenticated("invalid two-factor code")
		}

		user.TOTPEnabled = true
		if err := repo.Save(ctx, user); err != nil {
			return apperr.FromDB(err, "user")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditVerify2FA,
			Details:  fmt.Sprintf("Verified 2FA for user %s", user.Username),
			Metadata: map[string]any{"user_id": user.ID},
		})
	})
}
