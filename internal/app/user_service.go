package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"sro-assistant/internal/model"
	"sro-assistant/internal/registry"
)

var (
	ErrInvalidINN  = errors.New("inn must be 10 or 12 digits")
	ErrINNNotFound = errors.New("inn not found in registry")
)

type RegistryClient interface {
	CheckMembershipByINN(ctx context.Context, inn string) (*registry.Membership, error)
}

// UserService maintains chat user profiles and verifies SRO membership by INN.
type UserService struct {
	users    UserStore
	registry RegistryClient
	log      *zap.Logger
}

func NewUserService(users UserStore, registryClient RegistryClient, log *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		registry: registryClient,
		log:      log,
	}
}

// GetProfile returns the stored profile or nil when the user is unknown.
func (s *UserService) GetProfile(userID int64) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetByID(userID)
}

// VerifyINN checks the INN against the SRO registry and upserts the user with
// the resulting role. A registry miss leaves the stored profile untouched.
func (s *UserService) VerifyINN(ctx context.Context, userID int64, inn string) (*model.User, *registry.Membership, error) {
	if userID == 0 {
		return nil, nil, ErrInvalidInput
	}
	inn = strings.TrimSpace(inn)
	if !validINN(inn) {
		return nil, nil, ErrInvalidINN
	}

	membership, err := s.registry.CheckMembershipByINN(ctx, inn)
	if err != nil {
		return nil, nil, err
	}
	if membership == nil {
		return nil, nil, ErrINNNotFound
	}

	role := model.RoleGuest
	if membership.IsMember {
		role = model.RoleMember
	}
	user := &model.User{
		ID:       userID,
		INN:      inn,
		IsMember: membership.IsMember,
		Role:     role,
	}
	if err := s.users.Upsert(user); err != nil {
		return nil, nil, err
	}

	s.log.Info("user verified against registry",
		zap.Int64("user_id", userID),
		zap.String("role", role),
	)
	return user, membership, nil
}

// validINN accepts 10 digits (organizations) or 12 digits (individuals).
func validINN(inn string) bool {
	if len(inn) != 10 && len(inn) != 12 {
		return false
	}
	for _, r := range inn {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
