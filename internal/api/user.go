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

const defaultPageSize = 20

type UserHandler struct {
	db          *gorm.DB
	users       *service.UserService
	relations   *service.RelationService
	authService *service.AuthService
}

func NewUserHandler(db *gorm.DB, users *service.UserService, relations *service.RelationService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		db:          db,
		users:       users,
		relations:   relations,
		authService: authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.authService)

	users := router.Group("/users")
	{
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/me", required, h.Me)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	user, err := h.users.Get(c.Request.Context(), *userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// ListSubscriptions returns the authors the requester follows, each with
// their recipes in compact form.
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit := intQuery(c, "limit", defaultPageSize)
	offset := intQuery(c, "offset", 0)
	authors, err := h.users.Subscriptions(c.Request.Context(), *userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]SubscriptionResponse, len(authors))
	for i := range authors {
		out[i] = toSubscriptionResponse(&authors[i])
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	author, err := h.findUser(c, authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.relations.Add(c.Request.Context(), service.RelationSubscription, *userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(author))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.RequesterID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if _, err := h.findUser(c, authorID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.relations.Remove(c.Request.Context(), service.RelationSubscription, *userID, authorID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "not subscribed to this author"})
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) findUser(c *gin.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
