package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repos"
)

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string      `json:"idToken"`
	ExpiresIn int64       `json:"expiresIn"`
	User      domain.User `json:"user"`
}

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *auth.Tokens
}

func NewAuthService(users *repos.UserRepo, tokens *auth.Tokens) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

// Register creates a login identity. The email is unique ignoring case.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	taken, err := s.Users.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  strings.TrimSpace(name),
		Hash:  string(hash),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// lost a race against a concurrent registration of the same address
		if taken, _ := s.Users.EmailTaken(ctx, email); taken {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBadCreds
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	token, expiresIn, err := s.Tokens.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresIn: expiresIn, User: *u}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, uid string) (*domain.User, error) {
	return s.Users.ByID(ctx, uid)
}
