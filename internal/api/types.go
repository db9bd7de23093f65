package api

import (
	"github.com/google/uuid"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
)

// Request bodies

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required,gt=0"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required,gt=0"`
	Image       string                    `json:"image"`
	Tags        []uuid.UUID               `json:"tags"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
}

func (r *RecipeRequest) toInput(imageURL string) *service.RecipeInput {
	ingredients := make([]service.IngredientInput, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredients[i] = service.IngredientInput{
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		}
	}
	return &service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		ImageURL:    imageURL,
		TagIDs:      r.Tags,
		Ingredients: ingredients,
	}
}

// Response bodies, shaped per resource rather than leaking model internals.

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

func toRecipeResponse(r *service.AnnotatedRecipe) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, len(r.RecipeIngredients))
	for i, link := range r.RecipeIngredients {
		ingredients[i] = RecipeIngredientResponse{
			ID:              link.IngredientID,
			Name:            link.Ingredient.Name,
			MeasurementUnit: link.Ingredient.MeasurementUnit,
			Amount:          link.Amount,
		}
	}
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           toUserResponse(&r.Author),
		Ingredients:      ingredients,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

// RecipeInfoResponse is the compact form used by toggle responses and
// subscription listings.
type RecipeInfoResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CookingTime int       `json:"cooking_time"`
	Image       string    `json:"image"`
}

func toRecipeInfo(r *models.Recipe) RecipeInfoResponse {
	return RecipeInfoResponse{
		ID:          r.ID,
		Name:        r.Name,
		CookingTime: r.CookingTime,
		Image:       r.ImageURL,
	}
}

type SubscriptionResponse struct {
	UserResponse
	IsSubscribed bool                 `json:"is_subscribed"`
	Recipes      []RecipeInfoResponse `json:"recipes"`
}

func toSubscriptionResponse(sa *service.SubscribedAuthor) SubscriptionResponse {
	recipes := make([]RecipeInfoResponse, len(sa.Recipes))
	for i := range sa.Recipes {
		recipes[i] = toRecipeInfo(&sa.Recipes[i])
	}
	return SubscriptionResponse{
		UserResponse: toUserResponse(&sa.Author),
		IsSubscribed: true,
		Recipes:      recipes,
	}
}
