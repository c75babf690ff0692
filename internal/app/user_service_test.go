package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sro-assistant/internal/model"
	"sro-assistant/internal/registry"
)

type stubRegistry struct {
	membership *registry.Membership
	err        error
	lastINN    string
}

func (s *stubRegistry) CheckMembershipByINN(_ context.Context, inn string) (*registry.Membership, error) {
	s.lastINN = inn
	return s.membership, s.err
}

func TestVerifyINNActiveMember(t *testing.T) {
	store := &stubUserStore{}
	reg := &stubRegistry{membership: &registry.Membership{
		Name:     `ООО "СтройМонтаж"`,
		INN:      "5260123456",
		Status:   "Член СРО",
		IsMember: true,
	}}
	svc := NewUserService(store, reg, zap.NewNop())

	user, membership, err := svc.VerifyINN(context.Background(), 42, "5260123456")
	require.NoError(t, err)
	require.NotNil(t, membership)

	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "5260123456", user.INN)
	assert.True(t, user.IsMember)
	assert.Equal(t, model.RoleMember, user.Role)

	stored, err := store.GetByID(42)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.RoleMember, stored.Role)
}

func TestVerifyINNExcludedOrganizationStaysGuest(t *testing.T) {
	store := &stubUserStore{}
	reg := &stubRegistry{membership: &registry.Membership{
		INN:      "5261987654",
		Status:   "Исключен",
		IsMember: false,
	}}
	svc := NewUserService(store, reg, zap.NewNop())

	user, _, err := svc.VerifyINN(context.Background(), 7, "5261987654")
	require.NoError(t, err)
	assert.False(t, user.IsMember)
	assert.Equal(t, model.RoleGuest, user.Role)
}

func TestVerifyINNNotFound(t *testing.T) {
	store := &stubUserStore{}
	svc := NewUserService(store, &stubRegistry{}, zap.NewNop())

	_, _, err := svc.VerifyINN(context.Background(), 7, "5260123456")
	assert.ErrorIs(t, err, ErrINNNotFound)

	stored, err := store.GetByID(7)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestVerifyINNFormat(t *testing.T) {
	svc := NewUserService(&stubUserStore{}, &stubRegistry{}, zap.NewNop())
	ctx := context.Background()

	for _, inn := range []string{"", "12345", "12345678901", "526012345a", "5260 12345"} {
		_, _, err := svc.VerifyINN(ctx, 1, inn)
		assert.ErrorIs(t, err, ErrInvalidINN, "inn %q", inn)
	}

	// 12-digit individual INN passes format validation.
	reg := &stubRegistry{membership: &registry.Membership{INN: "526012345678", IsMember: true}}
	_, _, err := svc.VerifyINN(ctx, 1, "526012345678")
	assert.ErrorIs(t, err, ErrINNNotFound)
	_, _, err = NewUserService(&stubUserStore{}, reg, zap.NewNop()).VerifyINN(ctx, 1, "526012345678")
	assert.NoError(t, err)
}

func TestVerifyINNTrimsInput(t *testing.T) {
	reg := &stubRegistry{membership: &registry.Membership{INN: "5260123456", IsMember: true}}
	svc := NewUserService(&stubUserStore{}, reg, zap.NewNop())

	_, _, err := svc.VerifyINN(context.Background(), 1, "  5260123456  ")
	require.NoError(t, err)
	assert.Equal(t, "5260123456", reg.lastINN)
}

func TestVerifyINNRegistryError(t *testing.T) {
	reg := &stubRegistry{err: errors.New("registry parse failed")}
	svc := NewUserService(&stubUserStore{}, reg, zap.NewNop())

	_, _, err := svc.VerifyINN(context.Background(), 1, "5260123456")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrINNNotFound)
}

func TestGetProfile(t *testing.T) {
	store := &stubUserStore{users: map[int64]*model.User{
		10: {ID: 10, Role: model.RoleMember},
	}}
	svc := NewUserService(store, &stubRegistry{}, zap.NewNop())

	user, err := svc.GetProfile(10)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, user.Role)

	user, err = svc.GetProfile(11)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = svc.GetProfile(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
