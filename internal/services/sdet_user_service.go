package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

const DefaultBugsEnabled = 5

type SdetUserService struct {
	Users *repos.SdetUserRepo
}

func NewSdetUserService(users *repos.SdetUserRepo) *SdetUserService {
	return &SdetUserService{Users: users}
}

// ProfileSeed is what the caller knows about a user before a profile exists.
type ProfileSeed struct {
	UID         string
	Email       string
	DisplayName string
	Name        string
}

// GetOrCreate returns the stored profile, creating it from seed on first sight.
// Name is taken from seed.Name only; an absent name is stored empty.
func (s *SdetUserService) GetOrCreate(ctx context.Context, seed ProfileSeed) (domain.SdetUser, error) {
	u, err := s.Users.Get(ctx, seed.UID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.SdetUser{}, err
	}

	u = domain.SdetUser{
		UID:         seed.UID,
		Email:       optional(seed.Email),
		DisplayName: optional(seed.DisplayName),
		Name:        strings.TrimSpace(seed.Name),
		BugsEnabled: DefaultBugsEnabled,
	}
	if err := s.Users.Insert(ctx, &u); err != nil {
		return domain.SdetUser{}, err
	}
	// a concurrent first request may have won the insert
	return s.Users.Get(ctx, seed.UID)
}

// Update applies a name change when name is non-nil; the name is trimmed.
func (s *SdetUserService) Update(ctx context.Context, seed ProfileSeed, name *string) (domain.SdetUser, error) {
	u, err := s.GetOrCreate(ctx, seed)
	if err != nil {
		return domain.SdetUser{}, err
	}
	if name == nil {
		return u, nil
	}
	if err := s.Users.UpdateName(ctx, u.UID, strings.TrimSpace(*name)); err != nil {
		return domain.SdetUser{}, err
	}
	return s.Users.Get(ctx, u.UID)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
