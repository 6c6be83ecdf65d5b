package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

func validateName(verrs *ValidationErrors, name string) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		verrs.Add("name", "This field may not be blank.")
	case utf8.RuneCountInString(name) > 200:
		verrs.Add("name", "Ensure this field has no more than 200 characters.")
	}
}

func validateText(verrs *ValidationErrors, text string) {
	if strings.TrimSpace(text) == "" {
		verrs.Add("text", "This field may not be blank.")
	}
}

func validateCookingTime(verrs *ValidationErrors, minutes int) {
	if minutes < models.MinCookingTime || minutes > models.MaxCookingTime {
		verrs.Add("cooking_time", fmt.Sprintf(
			"Cooking time must be between %d and %d minutes.", models.MinCookingTime, models.MaxCookingTime))
	}
}

// validateTagSelection requires at least one tag and no repeats
func validateTagSelection(verrs *ValidationErrors, tags []uuid.UUID) {
	if len(tags) == 0 {
		verrs.Add("tags", "Select at least one tag.")
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(tags))
	for _, id := range tags {
		if _, dup := seen[id]; dup {
			verrs.Add("tags", "Tags must not repeat.")
			return
		}
		seen[id] = struct{}{}
	}
}

// validateIngredientSelection requires at least one ingredient, no repeats and
// amounts within bounds
func validateIngredientSelection(verrs *ValidationErrors, ingredients []types.IngredientAmount) {
	if len(ingredients) == 0 {
		verrs.Add("ingredients", "Select at least one ingredient.")
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(ingredients))
	for _, item := range ingredients {
		if _, dup := seen[item.ID]; dup {
			verrs.Add("ingredients", "Ingredients must not repeat.")
			return
		}
		seen[item.ID] = struct{}{}
		if item.Amount < models.MinAmount || item.Amount > models.MaxAmount {
			verrs.Add("ingredients", fmt.Sprintf(
				"Amount must be between %d and %d.", models.MinAmount, models.MaxAmount))
			return
		}
	}
}
