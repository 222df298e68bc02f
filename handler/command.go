package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo"
	"github.com/webuild-community/honor/bot"
	"github.com/webuild-community/honor/model"
	"github.com/webuild-community/honor/service/command"
	"go.uber.org/zap"
)

type CommandHandler struct {
	bot        *bot.Bot
	commandSvc command.Service
	logger     *zap.Logger
}

func NewCommandHandler(e *echo.Echo, logger *zap.Logger, b *bot.Bot, commandSvc command.Service) {
	handler := &CommandHandler{
		logger:     logger,
		bot:        b,
		commandSvc: commandSvc,
	}

	e.POST("/slack/commands", handler.commands)
}

// slashResponse is the immediate reply body for a slash command.
type slashResponse struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func (h *CommandHandler) commands(c echo.Context) error {
	s, err := h.commandSvc.Verify(c.Request())
	if err != nil {
		h.logger.Error("cannot verify slash command", zap.Error(err))
		return c.NoContent(http.StatusUnauthorized)
	}

	r := &bufferReplier{}
	h.bot.Command(c.Request().Context(), bot.Message{
		UserID:   s.UserID,
		Username: s.UserName,
		Text:     s.Command + " " + s.Text,
	}, strings.TrimPrefix(s.Command, "/"), strings.Fields(s.Text), r)

	if r.Len() == 0 {
		return c.JSON(http.StatusOK, slashResponse{ResponseType: "ephemeral", Text: "Unknown command " + s.Command})
	}
	return c.JSON(http.StatusOK, slashResponse{ResponseType: "ephemeral", Text: strings.ReplaceAll(r.String(), "**", "*")})
}

// bufferReplier collects replies into the synchronous slash command response.
type bufferReplier struct {
	mu sync.Mutex
	sb strings.Builder
}

func (r *bufferReplier) Reply(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sb.Len() > 0 {
		r.sb.WriteString("\n")
	}
	r.sb.WriteString(text)
	return nil
}

func (r *bufferReplier) Catalog(ctx context.Context, items []model.Item) error {
	return r.Reply(ctx, bot.PlainCatalog(items))
}

func (r *bufferReplier) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sb.Len()
}

func (r *bufferReplier) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sb.String()
}
