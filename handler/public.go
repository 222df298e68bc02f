package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	"github.com/webuild-community/honor/model"
	"github.com/webuild-community/honor/service/item"
	"github.com/webuild-community/honor/service/user"
	"go.uber.org/zap"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// PublicHandler serves the unauthenticated catalog and leaderboard reads.
type PublicHandler struct {
	userSvc user.Service
	itemSvc item.Service
	logger  *zap.Logger
}

func NewPublicHandler(e *echo.Echo, logger *zap.Logger, userSvc user.Service, itemSvc item.Service) {
	handler := &PublicHandler{
		userSvc: userSvc,
		itemSvc: itemSvc,
		logger:  logger,
	}

	e.GET("/api/shop", handler.shop)
	e.GET("/api/leaderboard", handler.leaderboard)
}

type shopItem struct {
	model.Item
	StockLabel string `json:"stockLabel"`
}

func (h *PublicHandler) shop(c echo.Context) error {
	items, err := h.itemSvc.Catalog(c.Request().Context())
	if err != nil {
		h.logger.Error("cannot fetch shop", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to fetch shop"})
	}

	resp := make([]shopItem, 0, len(items))
	for _, it := range items {
		resp = append(resp, shopItem{Item: it, StockLabel: it.StockLabel()})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PublicHandler) leaderboard(c echo.Context) error {
	limit := defaultLeaderboardSize
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, errorResp{Error: "limit must be a positive integer"})
		}
		limit = n
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	standings, err := h.userSvc.Top(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("cannot fetch leaderboard", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Failed to fetch leaderboard"})
	}
	if standings == nil {
		standings = []model.Standing{}
	}
	return c.JSON(http.StatusOK, standings)
}
