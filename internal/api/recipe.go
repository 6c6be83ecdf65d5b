package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListFilename is the attachment name of the exported shopping list
const ShoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipeService     service.IRecipeService
	membershipService service.IMembershipService
	shoppingService   service.IShoppingService
	pageSize          int
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	membershipService service.IMembershipService,
	shoppingService service.IShoppingService,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:     recipeService,
		membershipService: membershipService,
		shoppingService:   shoppingService,
		pageSize:          pageSize,
	}
}

// recipeFilter reads ?author=, repeated ?tags= and the membership flags
func recipeFilter(c *gin.Context) (service.RecipeFilter, bool) {
	var filter service.RecipeFilter
	if raw := c.Query("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, &service.ValidationError{Field: "author", Message: "Select a valid author."})
			return filter, false
		}
		filter.AuthorID = &id
	}
	for _, slug := range c.QueryArray("tags") {
		if slug != "" {
			filter.TagSlugs = append(filter.TagSlugs, slug)
		}
	}
	filter.IsFavorited = isTruthy(c.Query("is_favorited"))
	filter.IsInShoppingCart = isTruthy(c.Query("is_in_shopping_cart"))
	return filter, true
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, ok := recipeFilter(c)
	if !ok {
		return
	}
	page, ok := pageFromQuery(c, h.pageSize)
	if !ok {
		return
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), middleware.ViewerFrom(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, page, total, toRecipeResponses(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), middleware.ViewerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.ViewerFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(recipe))
}

// UpdateRecipe serves both PATCH and PUT. Tags and ingredients are always
// replaced as a whole.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.ViewerFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.ViewerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Membership returns the handler toggling one of the requester's recipe sets
func (h *RecipeHandler) Membership(kind service.MembershipKind, op service.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipeID, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		viewer := middleware.ViewerFrom(c)

		switch op {
		case service.Add:
			recipe, err := h.membershipService.Add(ctx, viewer, kind, recipeID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, toShortRecipe(recipe))
		case service.Remove:
			if err := h.membershipService.Remove(ctx, viewer, kind, recipeID); err != nil {
				respondError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		}
	}
}

// DownloadShoppingCart serves the aggregated shopping list as a text attachment
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shoppingService.ShoppingList(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+ShoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(items)))
}
