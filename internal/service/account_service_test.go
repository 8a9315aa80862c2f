package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/repository"
	"github.com/aryan0dhankhar/storefront/internal/security/auth"
)

func newAccounts() (*AccountService, *auth.TokenManager) {
	tm := auth.NewTokenManager("secret", "storefront")
	return NewAccountService(repository.NewMemoryStore().Users(), tm, time.Hour, nil), tm
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	s, tm := newAccounts()

	u, err := s.CreateUser(ctx, " Alice@Example.com ", "alice", "Password123", "")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "Password123", u.PasswordHash)

	token, got, err := s.Login(ctx, "alice@example.com", "Password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginRejections(t *testing.T) {
	ctx := context.Background()
	s, _ := newAccounts()
	_, err := s.CreateUser(ctx, "bob@example.com", "bob", "Password123", domain.RoleUser)
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(ctx, "nobody@example.com", "Password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newAccounts()

	_, err := s.CreateUser(ctx, "", "x", "Password123", "")
	assert.Error(t, err)
	_, err = s.CreateUser(ctx, "not-an-email", "x", "Password123", "")
	assert.Error(t, err)
	_, err = s.CreateUser(ctx, "Bob <bob@x.com>", "bob", "Password123", "")
	assert.Error(t, err, "display-name forms are not addresses")
	_, err = s.CreateUser(ctx, "x@example.com", "x", "short", "")
	assert.Error(t, err)
	_, err = s.CreateUser(ctx, "x@example.com", "x", "Password123", domain.Role("root"))
	assert.Error(t, err)

	_, err = s.CreateUser(ctx, "dup@example.com", "dup", "Password123", "")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "DUP@example.com", "other", "Password123", "")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestPromoteToAdmin(t *testing.T) {
	ctx := context.Background()
	s, _ := newAccounts()
	_, err := s.CreateUser(ctx, "carol@example.com", "carol", "Password123", "")
	require.NoError(t, err)

	u, err := s.PromoteToAdmin(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	_, err = s.PromoteToAdmin(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoleQuotaOracle(t *testing.T) {
	q := NewRoleQuotaOracle(repository.NewMemoryStore().Sites(), 3, 10)
	assert.Equal(t, 3, q.Limit(domain.RoleUser))
	assert.Equal(t, 3, q.Limit(""))
	assert.Equal(t, 10, q.Limit(domain.RoleAdmin))

	ok, err := q.CanCreateSite(context.Background(), &domain.User{ID: "u-1", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.True(t, ok)
}
