package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ShoppingListHeader is the first line of an exported shopping list
const ShoppingListHeader = "Shopping list:"

// ShoppingItem is one consolidated line of the shopping list
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

type ShoppingService struct {
	db *gorm.DB
}

func NewShoppingService(db *gorm.DB) *ShoppingService {
	return &ShoppingService{db: db}
}

// ShoppingList sums the ingredient amounts of every recipe in the viewer's
// cart, grouped by ingredient name and unit, ordered by name.
func (s *ShoppingService) ShoppingList(ctx context.Context, viewer Viewer) ([]ShoppingItem, error) {
	if err := viewer.requireUser(); err != nil {
		return nil, err
	}

	items := []ShoppingItem{}
	err := s.db.WithContext(ctx).
		Table("shopping_cart_entries AS sc").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("sc.user_id = ?", viewer.UserID).
		Group("i.name, i.measurement_unit").
		Order("i.name, i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}
	return items, nil
}

// RenderShoppingList formats the list as plain text, one "<name> - <sum> (<unit>)" line per item
func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	for _, item := range items {
		fmt.Fprintf(&b, "\n%s - %d (%s)", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}
