package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe listing. The membership flags are scoped to the viewer.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	if images == nil {
		images = InlineImageStore{}
	}
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// withFlags selects the recipe columns plus the viewer's membership flags.
// Both flags come from correlated EXISTS sub-selects, so a page costs one query.
func withFlags(q *gorm.DB, viewer Viewer) *gorm.DB {
	if !viewer.Authenticated {
		return q.Select("recipes.*")
	}
	return q.Select(
		"recipes.*, "+
			"EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?) AS is_favorited, "+
			"EXISTS (SELECT 1 FROM shopping_cart_entries sc WHERE sc.recipe_id = recipes.id AND sc.user_id = ?) AS is_in_shopping_cart",
		viewer.UserID, viewer.UserID,
	)
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("RecipeTags", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_tags.id") }).
		Preload("RecipeTags.Tag").
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("RecipeIngredients.Ingredient")
}

func (s *RecipeService) filtered(ctx context.Context, viewer Viewer, filter RecipeFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := s.db.Model(&models.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if filter.IsFavorited {
		q = q.Where("EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)", viewer.UserID)
	}
	if filter.IsInShoppingCart {
		q = q.Where("EXISTS (SELECT 1 FROM shopping_cart_entries sc WHERE sc.recipe_id = recipes.id AND sc.user_id = ?)", viewer.UserID)
	}
	return q
}

// ListRecipes returns one page of recipes, newest first, and the total match count
func (s *RecipeService) ListRecipes(ctx context.Context, viewer Viewer, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	recipes := []models.Recipe{}
	if !viewer.Authenticated && (filter.IsFavorited || filter.IsInShoppingCart) {
		return recipes, 0, nil
	}

	var total int64
	if err := s.filtered(ctx, viewer, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	if total == 0 {
		return recipes, 0, nil
	}

	q := withDetails(withFlags(s.filtered(ctx, viewer, filter), viewer)).
		Order("recipes.created_at DESC").
		Order("recipes.id")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	if err := s.markAuthors(ctx, viewer, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// GetRecipe loads one recipe with the viewer's flags
func (s *RecipeService) GetRecipe(ctx context.Context, viewer Viewer, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withDetails(withFlags(s.db.WithContext(ctx).Model(&models.Recipe{}), viewer)).
		Where("recipes.id = ?", id).
		Take(&recipe).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("recipe not found")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	recipes := []models.Recipe{recipe}
	if err := s.markAuthors(ctx, viewer, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// markAuthors sets is_subscribed on every author of the page with one query
func (s *RecipeService) markAuthors(ctx context.Context, viewer Viewer, recipes []models.Recipe) error {
	ids := make([]uuid.UUID, 0, len(recipes))
	for i := range recipes {
		ids = append(ids, recipes[i].AuthorID)
	}
	followed, err := followedSet(ctx, s.db, viewer, ids)
	if err != nil {
		return err
	}
	for i := range recipes {
		recipes[i].Author.IsSubscribed = followed[recipes[i].AuthorID]
	}
	return nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, viewer Viewer, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	if err := viewer.requireUser(); err != nil {
		return nil, err
	}

	var verrs ValidationErrors
	validateName(&verrs, req.Name)
	validateText(&verrs, req.Text)
	validateCookingTime(&verrs, req.CookingTime)
	if strings.TrimSpace(req.Image) == "" {
		verrs.Add("image", "This field is required.")
	}
	if err := s.validateAssociations(ctx, &verrs, req.Tags, req.Ingredients); err != nil {
		return nil, err
	}
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	image, err := storeImage(ctx, s.images, viewer.UserID, req.Image, "")
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       image,
		AuthorID:    viewer.UserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return replaceAssociations(tx, recipe.ID, req.Tags, req.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, viewer.UserID, image)
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", viewer.UserID.String()).
		Msg("recipe created")

	return s.GetRecipe(ctx, viewer, recipe.ID)
}

// UpdateRecipe applies the scalar fields that are set and replaces the tag
// and ingredient associations wholesale.
func (s *RecipeService) UpdateRecipe(ctx context.Context, viewer Viewer, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	recipe, err := s.loadForWrite(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	var verrs ValidationErrors
	updates := map[string]interface{}{}
	if req.Name != nil {
		validateName(&verrs, *req.Name)
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		validateText(&verrs, *req.Text)
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		validateCookingTime(&verrs, *req.CookingTime)
		updates["cooking_time"] = *req.CookingTime
	}
	if req.Image != nil && strings.TrimSpace(*req.Image) == "" {
		verrs.Add("image", "This field may not be blank.")
	}
	if err := s.validateAssociations(ctx, &verrs, req.Tags, req.Ingredients); err != nil {
		return nil, err
	}
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	var newImage string
	if req.Image != nil && *req.Image != recipe.Image {
		newImage, err = storeImage(ctx, s.images, recipe.AuthorID, *req.Image, recipe.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = newImage
	}
	updates["updated_at"] = time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return replaceAssociations(tx, recipe.ID, req.Tags, req.Ingredients)
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, recipe.AuthorID, newImage)
		}
		return nil, err
	}

	if newImage != "" {
		s.discardImage(ctx, recipe.AuthorID, recipe.Image)
	}

	logging.Ctx(ctx).Debug().Str("recipe_id", recipe.ID.String()).Msg("recipe updated")
	return s.GetRecipe(ctx, viewer, recipe.ID)
}

// DeleteRecipe removes the recipe, its join rows and every membership on it
func (s *RecipeService) DeleteRecipe(ctx context.Context, viewer Viewer, id uuid.UUID) error {
	recipe, err := s.loadForWrite(ctx, viewer, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Favorite{},
			&models.ShoppingCartEntry{},
			&models.RecipeTag{},
			&models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe relations: %w", err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, recipe.AuthorID, recipe.Image)
	logging.Ctx(ctx).Debug().Str("recipe_id", recipe.ID.String()).Msg("recipe deleted")
	return nil
}

// loadForWrite fetches the bare recipe and checks the viewer may change it
func (s *RecipeService) loadForWrite(ctx context.Context, viewer Viewer, id uuid.UUID) (*models.Recipe, error) {
	if err := viewer.requireUser(); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&recipe).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("recipe not found")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if recipe.AuthorID == viewer.UserID {
		return &recipe, nil
	}
	staff, err := isStaff(ctx, s.db, viewer)
	if err != nil {
		return nil, err
	}
	if !staff {
		return nil, forbidden("only the author can change this recipe")
	}
	return &recipe, nil
}

// validateAssociations checks the tag and ingredient selections. Unknown ids
// are looked up with one query per list.
func (s *RecipeService) validateAssociations(ctx context.Context, verrs *ValidationErrors, tags []uuid.UUID, ingredients []types.IngredientAmount) error {
	validateTagSelection(verrs, tags)
	validateIngredientSelection(verrs, ingredients)

	if !verrs.Has("tags") {
		missing, err := countMissing(ctx, s.db, &models.Tag{}, tags)
		if err != nil {
			return err
		}
		if missing > 0 {
			verrs.Add("tags", "One or more tags do not exist.")
		}
	}

	if !verrs.Has("ingredients") {
		ids := make([]uuid.UUID, 0, len(ingredients))
		for _, item := range ingredients {
			ids = append(ids, item.ID)
		}
		missing, err := countMissing(ctx, s.db, &models.Ingredient{}, ids)
		if err != nil {
			return err
		}
		if missing > 0 {
			verrs.Add("ingredients", "One or more ingredients do not exist.")
		}
	}
	return nil
}

func countMissing(ctx context.Context, db *gorm.DB, model interface{}, ids []uuid.UUID) (int64, error) {
	var found int64
	if err := db.WithContext(ctx).Model(model).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return 0, fmt.Errorf("failed to look up references: %w", err)
	}
	return int64(len(ids)) - found, nil
}

// replaceAssociations clears and recreates the recipe's join rows inside tx
func replaceAssociations(tx *gorm.DB, recipeID uuid.UUID, tags []uuid.UUID, ingredients []types.IngredientAmount) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}

	recipeTags := make([]models.RecipeTag, 0, len(tags))
	for _, tagID := range tags {
		recipeTags = append(recipeTags, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	if err := tx.Omit(clause.Associations).Create(&recipeTags).Error; err != nil {
		return fmt.Errorf("failed to create recipe tags: %w", err)
	}

	recipeIngredients := make([]models.RecipeIngredient, 0, len(ingredients))
	for _, item := range ingredients {
		recipeIngredients = append(recipeIngredients, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&recipeIngredients).Error; err != nil {
		return fmt.Errorf("failed to create recipe ingredients: %w", err)
	}
	return nil
}

// discardImage deletes an uploaded image that is no longer referenced. Only
// objects in the author's own folder are touched.
func (s *RecipeService) discardImage(ctx context.Context, authorID uuid.UUID, stored string) {
	if !ownsImage(stored, authorID) {
		return
	}
	if err := s.images.Delete(ctx, stored); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", stored).Msg("failed to delete recipe image")
	}
}
