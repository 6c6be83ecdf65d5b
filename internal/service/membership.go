package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipService adds and removes recipes in a user's favorites and shopping cart
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

type membershipSpec struct {
	table      string
	row        func(userID, recipeID uuid.UUID) interface{}
	model      interface{}
	duplicate  string
	notAMember string
}

func specFor(kind MembershipKind) (membershipSpec, error) {
	switch kind {
	case Favorite:
		return membershipSpec{
			table: "favorites",
			row: func(userID, recipeID uuid.UUID) interface{} {
				return &models.Favorite{UserID: userID, RecipeID: recipeID}
			},
			model:      &models.Favorite{},
			duplicate:  "Recipe is already in favorites.",
			notAMember: "Recipe is not in favorites.",
		}, nil
	case ShoppingCart:
		return membershipSpec{
			table: "shopping_cart_entries",
			row: func(userID, recipeID uuid.UUID) interface{} {
				return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
			},
			model:      &models.ShoppingCartEntry{},
			duplicate:  "Recipe is already in the shopping cart.",
			notAMember: "Recipe is not in the shopping cart.",
		}, nil
	default:
		return membershipSpec{}, fmt.Errorf("unknown membership kind %d", kind)
	}
}

// Add puts the recipe into the viewer's set and returns it. A pair that is
// already present fails with ErrConflict; the unique index decides races.
func (s *MembershipService) Add(ctx context.Context, viewer Viewer, kind MembershipKind, recipeID uuid.UUID) (*models.Recipe, error) {
	spec, err := specFor(kind)
	if err != nil {
		return nil, err
	}
	if err := viewer.requireUser(); err != nil {
		return nil, err
	}

	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(spec.table).
			Where("user_id = ? AND recipe_id = ?", viewer.UserID, recipeID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s: %w", kind, err)
		}
		if count > 0 {
			return conflict(spec.duplicate)
		}
		return tx.Omit(clause.Associations).Create(spec.row(viewer.UserID, recipeID)).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, conflict(spec.duplicate)
		}
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("kind", kind.String()).
		Str("recipe_id", recipeID.String()).
		Str("user_id", viewer.UserID.String()).
		Msg("membership added")
	return recipe, nil
}

// Remove deletes the recipe from the viewer's set. A missing pair fails with ErrNotFound.
func (s *MembershipService) Remove(ctx context.Context, viewer Viewer, kind MembershipKind, recipeID uuid.UUID) error {
	spec, err := specFor(kind)
	if err != nil {
		return err
	}
	if err := viewer.requireUser(); err != nil {
		return err
	}

	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", viewer.UserID, recipeID).
		Delete(spec.model)
	if res.Error != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(spec.notAMember)
	}

	logging.Ctx(ctx).Debug().
		Str("kind", kind.String()).
		Str("recipe_id", recipeID.String()).
		Str("user_id", viewer.UserID.String()).
		Msg("membership removed")
	return nil
}

// Contains reports whether the recipe is in the viewer's set
func (s *MembershipService) Contains(ctx context.Context, viewer Viewer, kind MembershipKind, recipeID uuid.UUID) (bool, error) {
	spec, err := specFor(kind)
	if err != nil {
		return false, err
	}
	if !viewer.Authenticated {
		return false, nil
	}
	var count int64
	err = s.db.WithContext(ctx).Table(spec.table).
		Where("user_id = ? AND recipe_id = ?", viewer.UserID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	return count > 0, nil
}

func (s *MembershipService) recipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&recipe).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("recipe not found")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}
