// Package services contains server-side business logic. UserService
// implements registration as an ordered, fail-fast pipeline:
//
//	email format → password format → email uniqueness → build record →
//	hash password → persist → issue token
//
// Every stage either hands a value to the next one or stops the pipeline
// with a *common.RegistrationError.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/dmitrijs2005/userreg/internal/dbx"
	"github.com/dmitrijs2005/userreg/internal/logging"
	"github.com/dmitrijs2005/userreg/internal/server/auth"
	"github.com/dmitrijs2005/userreg/internal/server/models"
	"github.com/dmitrijs2005/userreg/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userreg/internal/server/validation"
	"github.com/google/uuid"
)

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// TokenCodec issues and checks session tokens.
type TokenCodec interface {
	Issue(userID, email string, now time.Time) (string, error)
	Validate(token, expectedEmail string, now time.Time) (*auth.Claims, error)
	DecodeEmail(token string) (string, error)
}

// PhoneInput is a phone as submitted by the client.
type PhoneInput struct {
	Number      string
	CityCode    string
	CountryCode string
}

// RegisterRequest carries the registration input. Name is checked by the
// transport layer (see httpapi.Handler.Register) and stored as given.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Phones   []PhoneInput
}

// UserService registers users and resolves session tokens back to users.
// It keeps no per-request state and is safe for concurrent use.
type UserService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	rules       *validation.Rules
	hasher      PasswordHasher
	tokens      TokenCodec
	clock       auth.Clock
	logger      logging.Logger
	newID       func() string
}

// NewUserService wires the pipeline. All collaborators are required.
func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, rules *validation.Rules,
	hasher PasswordHasher, tokens TokenCodec, clock auth.Clock, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		rules:       rules,
		hasher:      hasher,
		tokens:      tokens,
		clock:       clock,
		logger:      logger.With("module", "user_service"),
		newID:       uuid.NewString,
	}
}

// Register validates the request, stores the new user and returns it with a
// freshly issued session token.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	s.logger.Info(ctx, "Registration request", "email", req.Email)

	if err := s.rules.Email.Validate(req.Email); err != nil {
		s.logger.Warn(ctx, "Invalid email", "email", req.Email, "reason", err.Error())
		return nil, common.NewRegistrationError(common.ErrInvalidEmailFormat, err.Error(), err)
	}

	if err := s.rules.Password.Validate(req.Password); err != nil {
		s.logger.Warn(ctx, "Invalid password", "email", req.Email)
		return nil, common.NewRegistrationError(common.ErrInvalidPasswordFormat, err.Error(), err)
	}

	email := strings.TrimSpace(req.Email)
	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "Existence check failed", "error", err)
		return nil, common.NewRegistrationError(common.ErrPersistence, "error checking email", err)
	}
	if exists {
		s.logger.Warn(ctx, "Email already registered", "email", email)
		return nil, common.NewRegistrationError(common.ErrEmailAlreadyExists, common.EmailAlreadyExistsMessage, nil)
	}

	user := s.buildUser(req, email)

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error(ctx, "Password hashing failed", "error", err)
		return nil, common.NewRegistrationError(common.ErrorInternal, "error hashing password", err)
	}
	user.PasswordHash = hash

	// a write that has started is not abandoned when the caller goes away
	if err := ctx.Err(); err != nil {
		return nil, common.NewRegistrationError(common.ErrPersistence, "request cancelled", err)
	}
	saved, err := repo.Create(context.WithoutCancel(ctx), user)
	if err != nil {
		if errors.Is(err, common.ErrEmailAlreadyExists) {
			s.logger.Warn(ctx, "Email registered concurrently", "email", email)
			return nil, common.NewRegistrationError(common.ErrEmailAlreadyExists, common.EmailAlreadyExistsMessage, err)
		}
		s.logger.Error(ctx, "Saving user failed", "error", err)
		return nil, common.NewRegistrationError(common.ErrPersistence, "error saving user", err)
	}

	token, err := s.tokens.Issue(saved.ID, saved.Email, s.clock.Now())
	if err != nil {
		s.logger.Error(ctx, "Token issuance failed", "user_id", saved.ID, "error", err)
		return nil, common.NewRegistrationError(common.ErrTokenIssuance, "error issuing token", err)
	}
	saved.Token = token

	s.logger.Info(ctx, "Registered", "user_id", saved.ID, "phones", len(saved.Phones))
	return saved, nil
}

func (s *UserService) buildUser(req RegisterRequest, email string) *models.User {
	user := &models.User{
		ID:     s.newID(),
		Name:   req.Name,
		Email:  email,
		Active: true,
	}

	if len(req.Phones) > 0 {
		user.Phones = make([]models.Phone, 0, len(req.Phones))
	}
	for _, p := range req.Phones {
		user.Phones = append(user.Phones, models.Phone{
			ID:          s.newID(),
			UserID:      user.ID,
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		})
	}

	return user
}

// GetUser returns the stored user with phones, or common.ErrorNotFound.
func (s *UserService) GetUser(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
}

// Authenticate resolves a session token to its user. It returns
// common.ErrMalformedToken when the token cannot be decoded,
// common.ErrInvalidToken when it is expired or does not belong to the stored
// user, and common.ErrorUnauthorized when the user no longer exists.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	email, err := s.tokens.DecodeEmail(token)
	if err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if _, err := s.tokens.Validate(token, user.Email, s.clock.Now()); err != nil {
		return nil, err
	}

	return user, nil
}
