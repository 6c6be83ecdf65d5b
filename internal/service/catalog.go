package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// CatalogService serves tags and ingredients
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&tag).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("tag not found")
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// ListIngredients returns ingredients whose name contains search, ignoring case
func (s *CatalogService) ListIngredients(ctx context.Context, search string) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where(`name_lower LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
	}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&ingredient).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("ingredient not found")
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ingredient, nil
}

// CreateTag adds a tag. Staff only.
func (s *CatalogService) CreateTag(ctx context.Context, viewer Viewer, req *types.CreateTagRequest) (*models.Tag, error) {
	if err := s.requireStaff(ctx, viewer); err != nil {
		return nil, err
	}

	tag := models.Tag{
		Name:  strings.TrimSpace(req.Name),
		Color: strings.ToUpper(req.Color),
		Slug:  req.Slug,
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("color = ? OR slug = ?", tag.Color, tag.Slug).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}
	if count > 0 {
		return nil, conflict("A tag with this color or slug already exists.")
	}

	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isDuplicate(err) {
			return nil, conflict("A tag with this color or slug already exists.")
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	logging.Ctx(ctx).Info().Str("slug", tag.Slug).Msg("tag created")
	return &tag, nil
}

// CreateIngredient adds an ingredient. Staff only.
func (s *CatalogService) CreateIngredient(ctx context.Context, viewer Viewer, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	if err := s.requireStaff(ctx, viewer); err != nil {
		return nil, err
	}

	ingredient, created, err := s.GetOrCreateIngredient(ctx, req.Name, req.MeasurementUnit)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, conflict("This ingredient already exists.")
	}
	return ingredient, nil
}

// GetOrCreateIngredient returns the ingredient with this name and unit, creating it if needed
func (s *CatalogService) GetOrCreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	ingredient := models.Ingredient{
		Name:            strings.TrimSpace(name),
		MeasurementUnit: strings.TrimSpace(unit),
	}
	if ingredient.Name == "" || ingredient.MeasurementUnit == "" {
		var verrs ValidationErrors
		if ingredient.Name == "" {
			verrs.Add("name", "This field may not be blank.")
		}
		if ingredient.MeasurementUnit == "" {
			verrs.Add("measurement_unit", "This field may not be blank.")
		}
		return nil, false, verrs
	}

	var existing models.Ingredient
	err := s.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit).
		Take(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !isRecordNotFound(err) {
		return nil, false, fmt.Errorf("failed to get ingredient: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		if isDuplicate(err) {
			return nil, false, conflict("This ingredient already exists.")
		}
		return nil, false, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return &ingredient, true, nil
}

// GetOrCreateTag returns the tag with this slug, creating it if needed
func (s *CatalogService) GetOrCreateTag(ctx context.Context, name, color, slug string) (*models.Tag, bool, error) {
	var existing models.Tag
	err := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !isRecordNotFound(err) {
		return nil, false, fmt.Errorf("failed to get tag: %w", err)
	}

	tag := models.Tag{Name: strings.TrimSpace(name), Color: strings.ToUpper(color), Slug: slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isDuplicate(err) {
			return nil, false, conflict(fmt.Sprintf("tag color %s is already used", tag.Color))
		}
		return nil, false, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, true, nil
}

func (s *CatalogService) requireStaff(ctx context.Context, viewer Viewer) error {
	if err := viewer.requireUser(); err != nil {
		return err
	}
	staff, err := isStaff(ctx, s.db, viewer)
	if err != nil {
		return err
	}
	if !staff {
		return forbidden("only staff can change the catalog")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
