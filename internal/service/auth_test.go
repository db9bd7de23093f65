package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/testhelpers"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	token, err := svc.Register(context.Background(), service.RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	loginToken, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	loginClaims, err := svc.ValidateToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loginClaims.UserID)
}

func TestRegisterDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	in := service.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "s3cret-pass",
	}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, service.ErrUserExists)

	// Same username under a fresh email still collides.
	in.Email = "alice2@example.com"
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsForgedSecret(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	issuer := service.NewAuthService(db, "issuer-secret")
	verifier := service.NewAuthService(db, "other-secret")

	token, err := issuer.Register(context.Background(), service.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
