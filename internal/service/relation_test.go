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

func TestFavoriteAddIsIdempotentCheck(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	recipes := service.NewRecipeService(db)
	relations := service.NewRelationService(db)
	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	tag := testhelpers.CreateTag(t, db, "lunch")
	ing := testhelpers.CreateIngredient(t, db, "salt", "g")

	recipe, err := recipes.Create(context.Background(), validInput(tag, ing), author.ID)
	require.NoError(t, err)

	require.NoError(t, relations.Add(context.Background(), service.RelationFavorite, viewer.ID, recipe.ID))

	err = relations.Add(context.Background(), service.RelationFavorite, viewer.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one row despite the repeated add")
}

func TestShoppingCartAddRemove(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	recipes := service.NewRecipeService(db)
	relations := service.NewRelationService(db)
	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	tag := testhelpers.CreateTag(t, db, "lunch")
	ing := testhelpers.CreateIngredient(t, db, "salt", "g")

	recipe, err := recipes.Create(context.Background(), validInput(tag, ing), author.ID)
	require.NoError(t, err)

	require.NoError(t, relations.Add(context.Background(), service.RelationShoppingCart, viewer.ID, recipe.ID))
	require.NoError(t, relations.Remove(context.Background(), service.RelationShoppingCart, viewer.ID, recipe.ID))

	var count int64
	require.NoError(t, db.Model(&models.ShoppingCart{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRemoveMissingPair(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	recipes := service.NewRecipeService(db)
	relations := service.NewRelationService(db)
	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	other := testhelpers.CreateUser(t, db, "other")
	tag := testhelpers.CreateTag(t, db, "lunch")
	ing := testhelpers.CreateIngredient(t, db, "salt", "g")

	recipe, err := recipes.Create(context.Background(), validInput(tag, ing), author.ID)
	require.NoError(t, err)
	require.NoError(t, relations.Add(context.Background(), service.RelationFavorite, other.ID, recipe.ID))

	// The viewer never favorited this recipe; the other user's row stays.
	err = relations.Remove(context.Background(), service.RelationFavorite, viewer.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscription(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	relations := service.NewRelationService(db)
	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "author")

	err := relations.Add(context.Background(), service.RelationSubscription, follower.ID, follower.ID)
	assert.ErrorIs(t, err, service.ErrSelfSubscription)

	require.NoError(t, relations.Add(context.Background(), service.RelationSubscription, follower.ID, author.ID))

	err = relations.Add(context.Background(), service.RelationSubscription, follower.ID, author.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	// The reverse direction is a separate pair.
	require.NoError(t, relations.Add(context.Background(), service.RelationSubscription, author.ID, follower.ID))

	require.NoError(t, relations.Remove(context.Background(), service.RelationSubscription, follower.ID, author.ID))
	err = relations.Remove(context.Background(), service.RelationSubscription, follower.ID, author.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
