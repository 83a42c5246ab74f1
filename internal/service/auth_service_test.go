package service

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, user, err := f.auth.Register(ctx, RegisterInput{
		FirstName: "Jane", LastName: "Doe", Email: "Jane@Example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserObjectID())

	_, _, err = f.auth.Register(ctx, RegisterInput{
		FirstName: "Jane", LastName: "Again", Email: "JANE@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short password", RegisterInput{FirstName: "a", LastName: "b", Email: "a@b.co", Password: "12345"}},
		{"unknown role", RegisterInput{FirstName: "a", LastName: "b", Email: "a@b.co", Password: "123456", Role: "client"}},
		{"missing name", RegisterInput{LastName: "b", Email: "a@b.co", Password: "123456"}},
		{"missing email", RegisterInput{FirstName: "a", LastName: "b", Password: "123456"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, _, err := f.auth.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, f.users.Len())
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.auth.Register(ctx, RegisterInput{FirstName: "A", LastName: "B", Email: "login@example.com", Password: "secret123"})
	require.NoError(t, err)

	token, user, err := f.auth.Login(ctx, "LOGIN@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "login@example.com", user.Email)

	_, _, err = f.auth.Login(ctx, "login@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = f.auth.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, user, err := f.auth.Register(ctx, RegisterInput{FirstName: "Old", LastName: "Name", Email: "p@example.com", Password: "secret123"})
	require.NoError(t, err)

	got, err := f.auth.UpdateProfile(ctx, user.ID, ProfileUpdate{FirstName: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", got.FirstName)
	assert.Equal(t, "Name", got.LastName)

	got, err = f.auth.UpdateProfile(ctx, user.ID, ProfileUpdate{Password: "another-secret"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("another-secret")))

	_, _, err = f.auth.Login(ctx, "p@example.com", "another-secret")
	assert.NoError(t, err)

	_, err = f.auth.UpdateProfile(ctx, user.ID, ProfileUpdate{Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.auth.UpdateProfile(ctx, primitive.NewObjectID(), ProfileUpdate{FirstName: "X"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.auth.SeedAdmin(ctx, "admin@example.com", "admin-pass"))
	require.NoError(t, f.auth.SeedAdmin(ctx, "ADMIN@example.com", "admin-pass"))
	assert.Equal(t, 1, f.users.Len())

	_, user, err := f.auth.Login(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	// Unconfigured seeding is a no-op.
	require.NoError(t, f.auth.SeedAdmin(ctx, "", ""))
	assert.Equal(t, 1, f.users.Len())
}
