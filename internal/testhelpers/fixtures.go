package testhelpers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
)

// CreateUser inserts a user with predictable fields derived from username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// CreateAdmin inserts a user with the admin flag set.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	require.NoError(t, db.Model(user).Update("is_admin", true).Error)
	user.IsAdmin = true
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{
		Name:  slug,
		Color: "#49B64E",
		Slug:  slug,
	}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{
		Name:            name,
		MeasurementUnit: unit,
	}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}
