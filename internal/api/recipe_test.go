package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/api"
	"github.com/plateful/backend/internal/testhelpers"
)

func recipePayload(t *testing.T, db *gorm.DB) map[string]interface{} {
	t.Helper()
	tag := testhelpers.CreateTag(t, db, "breakfast-"+uuid.NewString()[:8])
	ing := testhelpers.CreateIngredient(t, db, "flour-"+uuid.NewString()[:8], "g")
	return map[string]interface{}{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"tags":         []string{tag.ID.String()},
		"ingredients": []map[string]interface{}{
			{"id": ing.ID.String(), "amount": 100},
		},
	}
}

func TestCreateRecipeEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	token, user := registerUser(t, db, "author")

	w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", token, recipePayload(t, db))
	requireStatus(t, w, http.StatusCreated)

	var resp api.RecipeResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Pancakes", resp.Name)
	assert.Equal(t, user.ID, resp.Author.ID)
	assert.Equal(t, "author", resp.Author.Username)
	require.Len(t, resp.Tags, 1)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, 100, resp.Ingredients[0].Amount)
	assert.False(t, resp.IsFavorited)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	router, db := setupTestAPI(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", "", recipePayload(t, db))
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestCreateRecipeValidation(t *testing.T) {
	router, db := setupTestAPI(t)
	token, _ := registerUser(t, db, "author")

	payload := recipePayload(t, db)
	payload["tags"] = []string{}

	w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", token, payload)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestUpdateRecipeForbiddenForNonAuthor(t *testing.T) {
	router, db := setupTestAPI(t)
	authorToken, _ := registerUser(t, db, "author")
	otherToken, _ := registerUser(t, db, "other")

	w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", authorToken, recipePayload(t, db))
	requireStatus(t, w, http.StatusCreated)
	var created api.RecipeResponse
	decodeJSON(t, w, &created)

	w = doRequest(t, router, http.MethodPatch, "/api/v1/recipes/"+created.ID.String(), otherToken, recipePayload(t, db))
	requireStatus(t, w, http.StatusForbidden)

	w = doRequest(t, router, http.MethodDelete, "/api/v1/recipes/"+created.ID.String(), otherToken, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = doRequest(t, router, http.MethodDelete, "/api/v1/recipes/"+created.ID.String(), authorToken, nil)
	requireStatus(t, w, http.StatusNoContent)
}

func TestGetRecipeNotFound(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/recipes/"+uuid.NewString(), "", nil)
	requireStatus(t, w, http.StatusNotFound)

	w = doRequest(t, router, http.MethodGet, "/api/v1/recipes/not-a-uuid", "", nil)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestFavoriteToggleEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	authorToken, _ := registerUser(t, db, "author")
	viewerToken, _ := registerUser(t, db, "viewer")

	w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", authorToken, recipePayload(t, db))
	requireStatus(t, w, http.StatusCreated)
	var created api.RecipeResponse
	decodeJSON(t, w, &created)

	favoriteURL := fmt.Sprintf("/api/v1/recipes/%s/favorite", created.ID)

	w = doRequest(t, router, http.MethodPost, favoriteURL, viewerToken, nil)
	requireStatus(t, w, http.StatusCreated)
	var info api.RecipeInfoResponse
	decodeJSON(t, w, &info)
	assert.Equal(t, created.ID, info.ID)
	assert.Equal(t, "Pancakes", info.Name)

	// Adding twice is a client error, not an idempotent no-op.
	w = doRequest(t, router, http.MethodPost, favoriteURL, viewerToken, nil)
	requireStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, router, http.MethodDelete, favoriteURL, viewerToken, nil)
	requireStatus(t, w, http.StatusNoContent)

	w = doRequest(t, router, http.MethodDelete, favoriteURL, viewerToken, nil)
	requireStatus(t, w, http.StatusBadRequest)

	// Unknown recipe stays a 404 either way.
	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/favorite", uuid.New()), viewerToken, nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestListRecipesAnonymous(t *testing.T) {
	router, db := setupTestAPI(t)
	authorToken, _ := registerUser(t, db, "author")
	viewerToken, _ := registerUser(t, db, "viewer")

	w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", authorToken, recipePayload(t, db))
	requireStatus(t, w, http.StatusCreated)
	var created api.RecipeResponse
	decodeJSON(t, w, &created)

	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/favorite", created.ID), viewerToken, nil)
	requireStatus(t, w, http.StatusCreated)

	var listing struct {
		Recipes []api.RecipeResponse `json:"recipes"`
	}

	// The viewer sees their favorite flag.
	w = doRequest(t, router, http.MethodGet, "/api/v1/recipes", viewerToken, nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &listing)
	require.Len(t, listing.Recipes, 1)
	assert.True(t, listing.Recipes[0].IsFavorited)

	// An anonymous requester sees the recipe with the flag unset.
	w = doRequest(t, router, http.MethodGet, "/api/v1/recipes", "", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &listing)
	require.Len(t, listing.Recipes, 1)
	assert.False(t, listing.Recipes[0].IsFavorited)

	// Anonymous plus a relation filter is an empty listing.
	w = doRequest(t, router, http.MethodGet, "/api/v1/recipes?is_favorited=true", "", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &listing)
	assert.Empty(t, listing.Recipes)
}

func TestListRecipesTagFilter(t *testing.T) {
	router, db := setupTestAPI(t)
	token, _ := registerUser(t, db, "author")

	lunch := testhelpers.CreateTag(t, db, "lunch")
	dinner := testhelpers.CreateTag(t, db, "dinner")
	ing := testhelpers.CreateIngredient(t, db, "salt", "g")

	for _, tagID := range []string{lunch.ID.String(), dinner.ID.String()} {
		payload := map[string]interface{}{
			"name":         "Dish",
			"text":         "Cook it.",
			"cooking_time": 10,
			"tags":         []string{tagID},
			"ingredients": []map[string]interface{}{
				{"id": ing.ID.String(), "amount": 5},
			},
		}
		w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", token, payload)
		requireStatus(t, w, http.StatusCreated)
	}

	var listing struct {
		Recipes []api.RecipeResponse `json:"recipes"`
	}
	w := doRequest(t, router, http.MethodGet, "/api/v1/recipes?tags=lunch", "", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &listing)
	require.Len(t, listing.Recipes, 1)
	require.Len(t, listing.Recipes[0].Tags, 1)
	assert.Equal(t, "lunch", listing.Recipes[0].Tags[0].Slug)

	w = doRequest(t, router, http.MethodGet, "/api/v1/recipes?tags=lunch&tags=dinner", "", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &listing)
	assert.Len(t, listing.Recipes, 2)
}

func TestDownloadShoppingCart(t *testing.T) {
	router, db := setupTestAPI(t)
	token, _ := registerUser(t, db, "shopper")

	tag := testhelpers.CreateTag(t, db, "lunch")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")

	for _, amount := range []int{10, 15} {
		payload := map[string]interface{}{
			"name":         "Dish",
			"text":         "Cook it.",
			"cooking_time": 10,
			"tags":         []string{tag.ID.String()},
			"ingredients": []map[string]interface{}{
				{"id": salt.ID.String(), "amount": amount},
			},
		}
		w := doRequest(t, router, http.MethodPost, "/api/v1/recipes", token, payload)
		requireStatus(t, w, http.StatusCreated)
		var created api.RecipeResponse
		decodeJSON(t, w, &created)

		w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", created.ID), token, nil)
		requireStatus(t, w, http.StatusCreated)
	}

	w := doRequest(t, router, http.MethodGet, "/api/v1/recipes/shopping_cart/download", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")
	assert.Equal(t, "Salt (g) - 25", w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/api/v1/recipes/shopping_cart/download", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}
