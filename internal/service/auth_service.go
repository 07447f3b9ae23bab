package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/sse"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
)

// AuthService signs users in and out and resolves bearer tokens to actors.
type AuthService struct {
	users    UserStore
	tokens   *utils.TokenIssuer
	notifier sse.SessionNotifier
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users UserStore, tokens *utils.TokenIssuer, notifier sse.SessionNotifier) *AuthService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &AuthService{users: users, tokens: tokens, notifier: notifier}
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, utils.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return "", nil, utils.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}

	log.Info().Int("user_id", user.ID).Msg("Login successful")
	s.notifier.NotifyLogin(user.ID, user.Role)
	return token, user, nil
}

// Logout tells the user's open session streams that they signed out.
func (s *AuthService) Logout(actor account.Actor) {
	if actor.Authenticated() {
		s.notifier.NotifyLogout(actor.ID)
	}
}

// Register creates an account.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role account.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be client or master", utils.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must have at least 8 characters", utils.ErrValidation)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", utils.ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         string(role),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves a bearer token to an actor.
func (s *AuthService) Authenticate(token string) (account.Actor, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return account.Guest(), utils.ErrInvalidToken
	}
	role, err := account.ParseRole(claims.Role)
	if err != nil || role == account.RoleGuest {
		return account.Guest(), utils.ErrInvalidToken
	}
	return account.Actor{ID: claims.UserID, Role: role, Token: token}, nil
}
