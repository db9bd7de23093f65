package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
)

// RelationKind selects one of the three unique-pair relations.
type RelationKind int

const (
	RelationFavorite RelationKind = iota
	RelationShoppingCart
	RelationSubscription
)

// relationSpec is the per-kind strategy: how to build a row and how to match
// an existing pair. All three kinds share the same Add/Remove contract.
type relationSpec struct {
	model interface{}
	pair  string
	make  func(userID, targetID uuid.UUID) interface{}
}

var relationSpecs = map[RelationKind]relationSpec{
	RelationFavorite: {
		model: &models.Favorite{},
		pair:  "user_id = ? AND recipe_id = ?",
		make: func(userID, targetID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: targetID}
		},
	},
	RelationShoppingCart: {
		model: &models.ShoppingCart{},
		pair:  "user_id = ? AND recipe_id = ?",
		make: func(userID, targetID uuid.UUID) interface{} {
			return &models.ShoppingCart{UserID: userID, RecipeID: targetID}
		},
	},
	RelationSubscription: {
		model: &models.Subscription{},
		pair:  "user_id = ? AND author_id = ?",
		make: func(userID, targetID uuid.UUID) interface{} {
			return &models.Subscription{UserID: userID, AuthorID: targetID}
		},
	},
}

// RelationService implements the presence-toggle contract shared by
// Favorite, ShoppingCart and Subscription.
type RelationService struct {
	db *gorm.DB
}

// NewRelationService creates a new RelationService instance
func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// Add inserts the (user, target) pair. Re-adding an existing pair is rejected
// with ErrAlreadyExists, never ignored. The existence check and the insert run
// in one transaction; if a concurrent racer slips past the check, the
// composite unique index fires and the duplicate-key error is translated to
// ErrAlreadyExists, so exactly one of two simultaneous adds succeeds.
func (s *RelationService) Add(ctx context.Context, kind RelationKind, userID, targetID uuid.UUID) error {
	if kind == RelationSubscription && userID == targetID {
		return ErrSelfSubscription
	}
	spec := relationSpecs[kind]

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(spec.model).Where(spec.pair, userID, targetID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		return tx.Create(spec.make(userID, targetID)).Error
	})
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// Remove deletes the (user, target) pair, failing with ErrNotFound when it
// does not exist.
func (s *RelationService) Remove(ctx context.Context, kind RelationKind, userID, targetID uuid.UUID) error {
	spec := relationSpecs[kind]
	res := s.db.WithContext(ctx).Where(spec.pair, userID, targetID).Delete(spec.model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
