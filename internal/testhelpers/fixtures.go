package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TestPassword is the password of every user created by CreateUser
const TestPassword = "s3cret-pass"

var passwordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// CreateUser inserts a user whose email and username derive from name
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		FirstName:    "Test",
		LastName:     name,
		PasswordHash: passwordHash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

// CreateStaff inserts a staff user
func CreateStaff(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := CreateUser(t, db, name)
	if err := db.Model(user).Update("is_staff", true).Error; err != nil {
		t.Fatalf("failed to promote user %s: %v", name, err)
	}
	user.IsStaff = true
	return user
}

// CreateTag inserts a tag with the given slug and a color derived from it
func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	var n int64
	db.Model(&models.Tag{}).Count(&n)
	tag := &models.Tag{
		Name:  slug,
		Slug:  slug,
		Color: fmt.Sprintf("#%06X", 0x100000+n*4099),
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

// CreateIngredient inserts an ingredient
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// RecipeItem is one ingredient line for CreateRecipe
type RecipeItem struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its join rows directly, bypassing validation.
// Recipes created later sort as newer.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, items ...RecipeItem) *models.Recipe {
	t.Helper()
	var n int64
	db.Model(&models.Recipe{}).Count(&n)
	recipe := &models.Recipe{
		Name:        name,
		Text:        "Cook " + name,
		CookingTime: 10,
		Image:       "https://images.example.com/" + uuid.NewString() + ".png",
		AuthorID:    author.ID,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute),
	}
	if err := db.Omit(clause.Associations).Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	for _, tag := range tags {
		if err := db.Omit(clause.Associations).Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to tag recipe %s: %v", name, err)
		}
	}
	for _, item := range items {
		row := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: item.Ingredient.ID, Amount: item.Amount}
		if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
			t.Fatalf("failed to add ingredient to recipe %s: %v", name, err)
		}
	}
	return recipe
}

// CountRows counts the rows of model matching the condition
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
