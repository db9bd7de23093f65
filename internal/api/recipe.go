package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
)

type RecipeHandler struct {
	db          *gorm.DB
	recipes     *service.RecipeService
	relations   *service.RelationService
	images      *service.ImageService
	authService *service.AuthService
	rateLimiter *middleware.RateLimiter
}

func NewRecipeHandler(db *gorm.DB, recipes *service.RecipeService, relations *service.RelationService, images *service.ImageService, authService *service.AuthService, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		db:          db,
		recipes:     recipes,
		relations:   relations,
		images:      images,
		authService: authService,
		rateLimiter: rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuthMiddleware(h.authService)
	required := middleware.AuthMiddleware(h.authService)
	limit := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if h.rateLimiter != nil {
		limit = h.rateLimiter.RateLimitMiddleware()
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/shopping_cart/download", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("", required, limit, h.CreateRecipe)
		recipes.PATCH("/:id", required, limit, h.UpdateRecipe)
		recipes.DELETE("/:id", required, limit, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, limit, h.AddFavorite)
		recipes.DELETE("/:id/favorite", required, limit, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", required, limit, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", required, limit, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		TagSlugs:       c.QueryArray("tags"),
		Favorited:      boolQuery(c, "is_favorited"),
		InShoppingCart: boolQuery(c, "is_in_shopping_cart"),
	}

	recipes, err := h.recipes.List(c.Request.Context(), filter, middleware.RequesterID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = toRecipeResponse(&recipes[i])
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), recipeID, middleware.RequesterID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	imageURL, err := h.resolveImage(c, req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), req.toInput(imageURL), *userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	imageURL, err := h.resolveImage(c, req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), recipeID, req.toInput(imageURL), *userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), recipeID, *userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, service.RelationFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, service.RelationFavorite, "recipe is not in favorites")
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addRelation(c, service.RelationShoppingCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeRelation(c, service.RelationShoppingCart, "recipe is not in the shopping cart")
}

// addRelation runs the presence-toggle add for the favorite and shopping-cart
// kinds; the target recipe must exist (404 otherwise), an existing pair is a
// 400 toggle misuse.
func (h *RecipeHandler) addRelation(c *gin.Context, kind service.RelationKind) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipe, err := h.findRecipe(c, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.relations.Add(c.Request.Context(), kind, *userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeInfo(recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, kind service.RelationKind, missingMsg string) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if _, err := h.findRecipe(c, recipeID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.relations.Remove(c.Request.Context(), kind, *userID, recipeID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// The recipe exists, the pair does not: toggle misuse, not a 404.
			c.JSON(http.StatusBadRequest, gin.H{"error": missingMsg})
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	items, err := h.recipes.ShoppingList(c.Request.Context(), *userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(items)))
}

func (h *RecipeHandler) findRecipe(c *gin.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := h.db.WithContext(c.Request.Context()).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// resolveImage uploads inline base64 payloads to storage; already-resolved
// URLs (or an empty image) pass through untouched.
func (h *RecipeHandler) resolveImage(c *gin.Context, image string) (string, error) {
	if image == "" || !service.IsDataURI(image) {
		return image, nil
	}
	if h.images == nil {
		return "", errors.New("image storage is not configured")
	}
	return h.images.UploadBase64(c.Request.Context(), image)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func boolQuery(c *gin.Context, name string) bool {
	raw := c.Query(name)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}
