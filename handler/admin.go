package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	"github.com/webuild-community/honor/model"
	"github.com/webuild-community/honor/service/item"
	"github.com/webuild-community/honor/service/user"
	"go.uber.org/zap"
)

type AdminHandler struct {
	userSvc user.Service
	itemSvc item.Service
	logger  *zap.Logger
}

func NewAdminHandler(e *echo.Echo, logger *zap.Logger, auth *AuthorizeHandler, userSvc user.Service, itemSvc item.Service) {
	handler := &AdminHandler{
		userSvc: userSvc,
		itemSvc: itemSvc,
		logger:  logger,
	}

	e.GET("/api/users", handler.listUsers, auth.RequireAdmin)
	e.PUT("/api/users/:id", handler.updateUser, auth.RequireAdmin)
	e.GET("/api/items", handler.listItems, auth.RequireAdmin)
	e.POST("/api/items", handler.createItem, auth.RequireAdmin)
	e.PUT("/api/items/:id", handler.updateItem, auth.RequireAdmin)
	e.DELETE("/api/items/:id", handler.deleteItem, auth.RequireAdmin)
}

type (
	updateUserReq struct {
		Points *intField `json:"points"`
	}

	createItemReq struct {
		Name        string    `json:"name"`
		Cost        *intField `json:"cost"`
		Description string    `json:"description"`
		Stock       *intField `json:"stock"`
	}

	updateItemReq struct {
		Name         *string   `json:"name"`
		Cost         *intField `json:"cost"`
		Description  *string   `json:"description"`
		Stock        *intField `json:"stock"`
		IsActive     *bool     `json:"isActive"`
		NotionPageID *string   `json:"notionPageId"`
	}
)

func (h *AdminHandler) listUsers(c echo.Context) error {
	users, err := h.userSvc.Leaderboard(c.Request().Context())
	if err != nil {
		h.logger.Error("cannot fetch users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to fetch users"})
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) updateUser(c echo.Context) error {
	id := c.Param("id")
	var req updateUserReq
	if err := c.Bind(&req); err != nil || req.Points == nil {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "points must be an integer"})
	}

	u, err := h.userSvc.SetPoints(c.Request().Context(), id, int64(*req.Points))
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorResp{Error: "points must not be negative"})
	case errors.Is(err, user.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResp{Error: "User not found"})
	case err != nil:
		h.logger.Error("cannot update user", zap.Error(err), zap.String("user_id", id))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to update user"})
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) listItems(c echo.Context) error {
	items, err := h.itemSvc.List(c.Request().Context())
	if err != nil {
		h.logger.Error("cannot fetch items", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to fetch items"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) createItem(c echo.Context) error {
	var req createItemReq
	if err := c.Bind(&req); err != nil || req.Cost == nil {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "name and integer cost are required"})
	}

	it := model.Item{
		Name:        req.Name,
		Description: req.Description,
		Cost:        int64(*req.Cost),
		Stock:       model.UnlimitedStock,
		IsActive:    true,
	}
	if req.Stock != nil {
		it.Stock = int64(*req.Stock)
	}

	created, err := h.itemSvc.Create(c.Request().Context(), it)
	if errors.Is(err, item.ErrInvalidInput) {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Invalid item"})
	}
	if err != nil {
		h.logger.Error("cannot create item", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to create item"})
	}
	return c.JSON(http.StatusOK, created)
}

func (h *AdminHandler) updateItem(c echo.Context) error {
	id, ok := itemID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Invalid item id"})
	}
	var req updateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Invalid request body"})
	}

	updated, err := h.itemSvc.Update(c.Request().Context(), id, item.Changes{
		Name:         req.Name,
		Description:  req.Description,
		Cost:         req.Cost.ptr(),
		Stock:        req.Stock.ptr(),
		IsActive:     req.IsActive,
		NotionPageID: req.NotionPageID,
	})
	switch {
	case errors.Is(err, item.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Invalid item"})
	case errors.Is(err, item.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResp{Error: "Item not found"})
	case err != nil:
		h.logger.Error("cannot update item", zap.Error(err), zap.Uint("item_id", id))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to update item"})
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) deleteItem(c echo.Context) error {
	id, ok := itemID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Invalid item id"})
	}

	err := h.itemSvc.Delete(c.Request().Context(), id)
	if errors.Is(err, item.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResp{Error: "Item not found"})
	}
	if err != nil {
		h.logger.Error("cannot delete item", zap.Error(err), zap.Uint("item_id", id))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to delete item"})
	}
	return c.JSON(http.StatusOK, successResp{Success: true})
}

func itemID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
