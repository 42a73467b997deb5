package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/validation"
	"tastebud/pkg/keyval"
	"tastebud/pkg/mailqueue"
)

// TokenPrefix is the required, case-sensitive bearer prefix on the
// Authorization header.
const TokenPrefix = "Bearer "

// AuthValidators groups the request validators the auth service depends on.
// They are constructed once and injected, never built inside a method.
type AuthValidators struct {
	Register     *validation.Validator[validation.RegisterPayload]
	Login        *validation.Validator[validation.LoginPayload]
	ResetRequest *validation.Validator[validation.ResetRequestPayload]
	ResetConfirm *validation.Validator[validation.ResetConfirmPayload]
}

// AuthService handles registration, login, token resolution, tier
// authorization and the password-reset flow.
type AuthService struct {
	users       repositories.UserRepository
	validators  AuthValidators
	kv          keyval.Store
	mail        mailqueue.Sender
	resetSecret []byte
	resetTTL    time.Duration
	mailFrom    string
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repositories.UserRepository,
	validators AuthValidators,
	kv keyval.Store,
	mail mailqueue.Sender,
	resetSecret string,
	resetTTL time.Duration,
	mailFrom string,
) *AuthService {
	return &AuthService{
		users:       users,
		validators:  validators,
		kv:          kv,
		mail:        mail,
		resetSecret: []byte(resetSecret),
		resetTTL:    resetTTL,
		mailFrom:    mailFrom,
	}
}

// newOpaqueToken issues a fresh access token. Tokens are unguessable and
// carry no claims; the store maps them back to the identity.
func newOpaqueToken() string {
	return uuid.New().String()
}

// Register creates a new identity with a hashed password and a fresh access
// token. Username and email collisions surface as conflicts.
func (s *AuthService) Register(p *validation.RegisterPayload) (*models.User, error) {
	if err := s.validators.Register.Validate(p); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: p.Username,
		Email:    p.Email,
		Password: string(hash),
		Token:    newOpaqueToken(),
		Role:     models.RoleUser,
		Bio:      p.Bio,
		Location: p.Location,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the identity, current access token
// included. An unknown username and a wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(p *validation.LoginPayload) (*models.User, error) {
	if err := s.validators.Login.Validate(p); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(p.Username)
	if err != nil {
		return nil, apperr.ShieldLogin(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(p.Password)); err != nil {
		return nil, apperr.ErrBadCredentials
	}
	return user, nil
}

// Authenticate resolves the raw Authorization header value to an identity.
// It fails closed: a missing header, a missing or differently-cased prefix,
// or an unknown token all yield the same invalid-token failure.
func (s *AuthService) Authenticate(header string) (*models.User, error) {
	if header == "" {
		return nil, apperr.ErrInvalidToken
	}
	if len(header) <= len(TokenPrefix) || header[:len(TokenPrefix)] != TokenPrefix {
		return nil, apperr.ErrInvalidToken
	}
	token := header[len(TokenPrefix):]
	return s.users.GetByToken(token)
}

// Authorize checks the identity's tier against the action's minimum tier.
// Strictly below the minimum fails; equal or above passes.
func (s *AuthService) Authorize(user *models.User, min models.Role) error {
	if !user.Role.AtLeast(min) {
		return apperr.ErrNotPrivileged
	}
	return nil
}

// resetClaims is the payload of a password-reset token.
type resetClaims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

// RequestPasswordReset issues a short-lived reset token, parks it in the
// ephemeral store and mails it to the identity's address.
func (s *AuthService) RequestPasswordReset(ctx context.Context, p *validation.ResetRequestPayload) error {
	if err := s.validators.ResetRequest.Validate(p); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(p.Email)
	if err != nil {
		return err
	}

	claims := resetClaims{
		UserID: user.ID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(s.resetTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.resetSecret)
	if err != nil {
		return fmt.Errorf("failed to sign reset token: %w", err)
	}

	if err := s.kv.SetWithExpiry(ctx, resetKey(token), fmt.Sprint(user.ID), s.resetTTL); err != nil {
		slog.Error("reset store write failed", "error", err)
		return apperr.Unavailable("password reset is temporarily unavailable")
	}

	body := fmt.Sprintf("Hi %s,\n\nUse the token below to reset your password. It expires in %s.\n\n%s\n",
		user.Username, s.resetTTL, token)
	if err := s.mail.Send(user.Email, "Password reset", body); err != nil {
		slog.Error("reset mail enqueue failed", "error", err)
		return apperr.Unavailable("password reset is temporarily unavailable")
	}
	return nil
}

// ResetPassword consumes a reset token and installs a new password. The
// access token rotates, invalidating every previously issued copy.
func (s *AuthService) ResetPassword(ctx context.Context, p *validation.ResetConfirmPayload) error {
	if err := s.validators.ResetConfirm.Validate(p); err != nil {
		return err
	}

	var claims resetClaims
	_, err := jwt.ParseWithClaims(p.Token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.resetSecret, nil
	})
	if err != nil {
		return apperr.BadRequest("invalid or expired reset token")
	}

	// The store copy is the single-use guard: a second redemption of a
	// still-unexpired token finds the key gone.
	if _, err := s.kv.Get(ctx, resetKey(p.Token)); err != nil {
		if errors.Is(err, keyval.ErrNotFound) {
			return apperr.BadRequest("invalid or expired reset token")
		}
		slog.Error("reset store read failed", "error", err)
		return apperr.Unavailable("password reset is temporarily unavailable")
	}
	if err := s.kv.Del(ctx, resetKey(p.Token)); err != nil {
		slog.Error("reset store delete failed", "error", err)
		return apperr.Unavailable("password reset is temporarily unavailable")
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)
	user.Token = newOpaqueToken()
	return s.users.Update(user)
}

func resetKey(token string) string {
	return "reset:" + token
}
