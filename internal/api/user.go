package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// UserHandler serves user profiles and follow toggles
type UserHandler struct {
	userService service.IUserService
	pageSize    int
}

func NewUserHandler(userService service.IUserService, pageSize int) *UserHandler {
	return &UserHandler{userService: userService, pageSize: pageSize}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, ok := pageFromQuery(c, h.pageSize)
	if !ok {
		return
	}
	users, total, err := h.userService.ListUsers(c.Request.Context(), middleware.ViewerFrom(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, page, total, toUserResponses(users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), middleware.ViewerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Subscriptions lists the authors the requester follows
func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, ok := pageFromQuery(c, h.pageSize)
	if !ok {
		return
	}
	subs, total, err := h.userService.Subscriptions(c.Request.Context(), middleware.ViewerFrom(c), page, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, page, total, toSubscriptionResponses(subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	h.toggleSubscription(c, service.Add)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	h.toggleSubscription(c, service.Remove)
}

func (h *UserHandler) toggleSubscription(c *gin.Context, op service.Operation) {
	authorID, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	viewer := middleware.ViewerFrom(c)

	switch op {
	case service.Add:
		sub, err := h.userService.Subscribe(ctx, viewer, authorID, recipesLimit(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toSubscriptionResponse(sub))
	case service.Remove:
		if err := h.userService.Unsubscribe(ctx, viewer, authorID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
