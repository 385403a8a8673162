package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslib/library-service/internal/models"
)

func (d *serviceDeps) userService() UserService {
	return NewUserService(d.repo, d.validator, d.logger)
}

func TestRegisterStudent(t *testing.T) {
	deps := newServiceDeps(t)
	svc := deps.userService()
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{
		Username: "alice", Password: "secret", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, "Student registered successfully", result.Message)
	assert.False(t, result.AlreadyRegistered)
	assert.NotEmpty(t, result.Token)
	assert.NotZero(t, result.UserID)

	// The password never goes into storage in the clear.
	stored, err := deps.repo.Users().GetByID(ctx, result.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterStudentAgainReturnsSameToken(t *testing.T) {
	deps := newServiceDeps(t)
	svc := deps.userService()
	ctx := context.Background()

	first, err := svc.Register(ctx, &RegisterRequest{
		Username: "alice", Password: "secret", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	second, err := svc.Register(ctx, &RegisterRequest{
		Username: "alice", Password: "whatever", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, "Student already registered", second.Message)
	assert.True(t, second.AlreadyRegistered)
	assert.Equal(t, first.Token, second.Token)
}

func TestRegisterStudentBackfillsToken(t *testing.T) {
	deps := newServiceDeps(t)
	svc := deps.userService()
	ctx := context.Background()

	// An account from before token issuance has none stored.
	legacy := &models.User{Username: "alice", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, deps.repo.Users().Create(ctx, legacy))

	result, err := svc.Register(ctx, &RegisterRequest{
		Username: "alice", Password: "secret", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, "Student already registered, token generated", result.Message)
	assert.NotEmpty(t, result.Token)

	stored, err := deps.repo.Users().GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Token, stored.Token)
}

func TestRegisterLibrarian(t *testing.T) {
	deps := newServiceDeps(t)
	svc := deps.userService()
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{
		Username: "lib", Password: "secret", Role: models.RoleLibrarian,
	})
	require.NoError(t, err)
	assert.Equal(t, "Librarian registered successfully", result.Message)
	assert.Empty(t, result.Token)

	_, err = svc.Register(ctx, &RegisterRequest{
		Username: "lib", Password: "secret", Role: models.RoleLibrarian,
	})
	assert.ErrorIs(t, err, ErrLibrarianExists)
}

func TestLogin(t *testing.T) {
	deps := newServiceDeps(t)
	svc := deps.userService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Username: "alice", Password: "secret", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "Login successful", result.Message)
		assert.Equal(t, models.RoleStudent, result.Role)
		assert.Equal(t, registered.Token, result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{Username: "ghost", Password: "secret"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
