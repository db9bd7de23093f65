package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
)

// UserService serves user profiles and the subscription listing.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SubscribedAuthor is one followed author together with their recipes.
type SubscribedAuthor struct {
	Author  models.User
	Recipes []models.Recipe
}

// Subscriptions lists the authors the given user follows, newest subscription
// first, each with their recipes. Slicing into pages happens at the HTTP edge.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]SubscribedAuthor, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.created_at DESC, users.id")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var authors []models.User
	if err := q.Find(&authors).Error; err != nil {
		return nil, err
	}
	if len(authors) == 0 {
		return []SubscribedAuthor{}, nil
	}

	authorIDs := make([]uuid.UUID, len(authors))
	for i, a := range authors {
		authorIDs[i] = a.ID
	}
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("pub_date DESC, id").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[uuid.UUID][]models.Recipe, len(authors))
	for _, r := range recipes {
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
	}
	result := make([]SubscribedAuthor, len(authors))
	for i, a := range authors {
		result[i] = SubscribedAuthor{
			Author:  a,
			Recipes: byAuthor[a.ID],
		}
	}
	return result, nil
}
