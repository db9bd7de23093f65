package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
)

// RecipeService handles recipe validation, the atomic write path, filtered
// listings and the shopping-list aggregation.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientInput is one {ingredient, amount} pair of a recipe payload.
type IngredientInput struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput is a proposed recipe payload, already decoded from transport.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	ImageURL    string
	TagIDs      []uuid.UUID
	Ingredients []IngredientInput
}

// RecipeFilter holds the conjunctive listing filters.
type RecipeFilter struct {
	TagSlugs       []string
	Favorited      bool
	InShoppingCart bool
}

// AnnotatedRecipe is a recipe plus the per-requester booleans computed by the
// listing query.
type AnnotatedRecipe struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
}

// ValidateRecipeInput checks a payload before any persistence happens. It is
// pure: no database access, no side effects.
func ValidateRecipeInput(in *RecipeInput) error {
	if len(in.TagIDs) == 0 {
		return ErrEmptyTagList
	}
	if len(in.Ingredients) == 0 {
		return ErrEmptyIngredientList
	}
	seenTags := make(map[uuid.UUID]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, ok := seenTags[id]; ok {
			return ErrDuplicateTag
		}
		seenTags[id] = struct{}{}
	}
	// Amounts are irrelevant to the duplicate check, only identity counts.
	seenIngredients := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		if _, ok := seenIngredients[ing.IngredientID]; ok {
			return ErrDuplicateIngredient
		}
		seenIngredients[ing.IngredientID] = struct{}{}
	}
	return nil
}

// Create validates the payload and persists the recipe, its tag set and its
// ingredient links as one transaction. On any failure nothing is committed.
func (s *RecipeService) Create(ctx context.Context, in *RecipeInput, authorID uuid.UUID) (*AnnotatedRecipe, error) {
	if err := ValidateRecipeInput(in); err != nil {
		return nil, err
	}

	var recipeID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, in.Ingredients); err != nil {
			return err
		}

		recipe := models.Recipe{
			Name:        in.Name,
			Text:        in.Text,
			CookingTime: in.CookingTime,
			ImageURL:    in.ImageURL,
			AuthorID:    authorID,
			PubDate:     time.Now(),
		}
		if err := tx.Omit("Tags", "RecipeIngredients").Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
			return err
		}
		if err := createIngredientLinks(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		recipeID = recipe.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipeID, &authorID)
}

// Update validates the payload, enforces author-only access, then replaces the
// scalar fields, the tag set and the ingredient links wholesale in one
// transaction. A partially applied update is never observable.
func (s *RecipeService) Update(ctx context.Context, recipeID uuid.UUID, in *RecipeInput, requesterID uuid.UUID) (*AnnotatedRecipe, error) {
	if err := ValidateRecipeInput(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != requesterID {
			return ErrPermissionDenied
		}

		tags, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, in.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.ImageURL != "" {
			updates["image_url"] = in.ImageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createIngredientLinks(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipeID, &requesterID)
}

// Delete removes a recipe and everything hanging off it. Allowed for the
// author and for admins.
func (s *RecipeService) Delete(ctx context.Context, recipeID, requesterID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var requester models.User
		if err := tx.First(&requester, "id = ?", requesterID).Error; err != nil {
			return err
		}
		if recipe.AuthorID != requesterID && !requester.IsAdmin {
			return ErrPermissionDenied
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// Get retrieves one recipe with its tag set, ingredient links and the
// per-requester annotations.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, requesterID *uuid.UUID) (*AnnotatedRecipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		Preload("Author").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	annotated := AnnotatedRecipe{Recipe: recipe}
	if requesterID != nil {
		var favCount, cartCount int64
		if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id = ?", *requesterID, recipeID).
			Count(&favCount).Error; err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
			Where("user_id = ? AND recipe_id = ?", *requesterID, recipeID).
			Count(&cartCount).Error; err != nil {
			return nil, err
		}
		annotated.IsFavorited = favCount > 0
		annotated.IsInShoppingCart = cartCount > 0
	}
	return &annotated, nil
}

type recipeListRow struct {
	ID               uuid.UUID
	IsFavorited      bool
	IsInShoppingCart bool
}

// List returns recipes ordered by pub_date descending (recipe id as the
// stable tiebreak), with all filters AND'd together. The tag filter is an OR
// across the given slugs. The is_favorited / is_in_shopping_cart annotations
// come out of the listing query itself as EXISTS subselects; anonymous
// requesters get false for both, and an anonymous favorited/cart filter
// yields an empty result instead of an error.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter, requesterID *uuid.UUID) ([]AnnotatedRecipe, error) {
	if requesterID == nil && (filter.Favorited || filter.InShoppingCart) {
		return []AnnotatedRecipe{}, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if requesterID != nil {
		q = q.Select("recipes.id AS id, "+
			"EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?) AS is_favorited, "+
			"EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?) AS is_in_shopping_cart",
			*requesterID, *requesterID)
	} else {
		q = q.Select("recipes.id AS id, (1 = 0) AS is_favorited, (1 = 0) AS is_in_shopping_cart")
	}

	if len(filter.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (SELECT rt.recipe_id FROM recipe_tags rt JOIN tags ON tags.id = rt.tag_id WHERE tags.slug IN ?)",
			filter.TagSlugs)
	}
	if filter.Favorited {
		q = q.Where("recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)", *requesterID)
	}
	if filter.InShoppingCart {
		q = q.Where("recipes.id IN (SELECT recipe_id FROM shopping_carts WHERE user_id = ?)", *requesterID)
	}

	var rows []recipeListRow
	if err := q.Order("recipes.pub_date DESC, recipes.id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []AnnotatedRecipe{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		Preload("Author").
		Find(&recipes, "id IN ?", ids).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	result := make([]AnnotatedRecipe, 0, len(rows))
	for _, row := range rows {
		recipe, ok := byID[row.ID]
		if !ok {
			continue
		}
		result = append(result, AnnotatedRecipe{
			Recipe:           recipe,
			IsFavorited:      row.IsFavorited,
			IsInShoppingCart: row.IsInShoppingCart,
		})
	}
	return result, nil
}

// ShoppingListItem is one aggregated (ingredient name, unit) total.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	TotalAmount     int
}

// ShoppingList sums ingredient amounts over every recipe in the given user's
// shopping cart, grouped by ingredient identity. Ordered by (name, unit) so
// the rendered list is deterministic. An empty cart yields an empty list.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RenderShoppingList formats aggregated items as the line-oriented text export.
func RenderShoppingList(items []ShoppingListItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s (%s) - %d", item.Name, item.MeasurementUnit, item.TotalAmount)
	}
	return strings.Join(lines, "\n")
}

func resolveTags(tx *gorm.DB, tagIDs []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, ErrNotFound
	}
	return tags, nil
}

func checkIngredientsExist(tx *gorm.DB, ingredients []IngredientInput) error {
	ids := make([]uuid.UUID, len(ingredients))
	for i, ing := range ingredients {
		ids[i] = ing.IngredientID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrNotFound
	}
	return nil
}

func createIngredientLinks(tx *gorm.DB, recipeID uuid.UUID, ingredients []IngredientInput) error {
	links := make([]models.RecipeIngredient, len(ingredients))
	for i, ing := range ingredients {
		links[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ing.IngredientID,
			Amount:       ing.Amount,
		}
	}
	return tx.Create(&links).Error
}
