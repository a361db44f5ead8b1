package service

import (
	"context"
	"testing"

	"croppo/internal/permission"
	"croppo/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	admin := seedUser(t, env.db, "Farm Administrator", permission.RoleAdmin)

	created, err := svc.CreateUser(ctx, admin, CreateUserRequest{
		Email:    "agro@croppo.com",
		Name:     "Field Agronomist",
		Password: "agro123",
		Role:     "Agronomist",
	})
	require.NoError(t, err)
	assert.Equal(t, "Agronomist", created.Role)
	assert.True(t, created.IsActive)

	// Password never leaves the service layer.
	fetched, err := svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, fetched.Email)
}

func TestCreateUserChecks(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	admin := seedUser(t, env.db, "Farm Administrator", permission.RoleAdmin)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	// Managers only read user management.
	_, err := svc.CreateUser(ctx, manager, CreateUserRequest{
		Email: "x@croppo.com", Name: "X", Password: "secret1", Role: "Accountant",
	})
	assert.True(t, apperr.IsPermission(err))

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{
		Email: "x@croppo.com", Name: "X", Password: "secret1", Role: "Intern",
	})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{
		Email: "ok@croppo.com", Name: "OK", Password: "secret1", Role: "Accountant",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{
		Email: "ok@croppo.com", Name: "Duplicate", Password: "secret1", Role: "Accountant",
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	admin := seedUser(t, env.db, "Farm Administrator", permission.RoleAdmin)
	target := seedUser(t, env.db, "Old Name", permission.RoleAccountant)

	inactive := false
	updated, err := svc.UpdateUser(ctx, admin, target.ID.String(), UpdateUserRequest{
		Name:     "New Name",
		Role:     "Manager",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "Manager", updated.Role)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateUser(ctx, admin, target.ID.String(), UpdateUserRequest{Role: "Wizard"})
	assert.True(t, apperr.IsValidation(err))
}

func TestDeactivateUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	admin := seedUser(t, env.db, "Farm Administrator", permission.RoleAdmin)
	target := seedUser(t, env.db, "Leaving", permission.RoleAgronomist)

	// Nobody deactivates their own account.
	err := svc.DeactivateUser(ctx, admin, admin.ID.String())
	assert.True(t, apperr.IsValidation(err))

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	err = svc.DeactivateUser(ctx, agronomist, target.ID.String())
	assert.True(t, apperr.IsPermission(err))

	require.NoError(t, svc.DeactivateUser(ctx, admin, target.ID.String()))

	_, err = svc.GetUserByID(ctx, target.ID.String())
	assert.True(t, apperr.IsNotFound(err))
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	seedUser(t, env.db, "Farm Administrator", permission.RoleAdmin)
	seedUser(t, env.db, "Farm Manager", permission.RoleManager)
	seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)

	users, total, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)
}
