package handler

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/labstack/echo"
	"github.com/slack-go/slack"
	"github.com/webuild-community/honor/bot"
	"github.com/webuild-community/honor/service/event"
	"go.uber.org/zap"
)

type InteractiveHandler struct {
	logger   *zap.Logger
	bot      *bot.Bot
	eventSvc event.Service
}

func NewInteractiveHandler(e *echo.Echo, logger *zap.Logger, b *bot.Bot, eventSvc event.Service) {
	handler := &InteractiveHandler{
		logger:   logger,
		bot:      b,
		eventSvc: eventSvc,
	}

	e.POST("/slack/interactives", handler.interactives)
}

func (h *InteractiveHandler) interactives(c echo.Context) error {
	buf, err := ioutil.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("failed to read request body", zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}

	if err := h.eventSvc.Authenticate(c.Request().Header, buf); err != nil {
		return c.NoContent(http.StatusUnauthorized)
	}

	form, err := url.ParseQuery(string(buf))
	if err != nil {
		h.logger.Error("failed to parse request body", zap.Error(err))
		return c.NoContent(http.StatusBadRequest)
	}

	var message slack.InteractionCallback
	if err := json.Unmarshal([]byte(form.Get("payload")), &message); err != nil {
		h.logger.Error("failed to decode json message from slack", zap.Error(err))
		return c.NoContent(http.StatusBadRequest)
	}

	if len(message.ActionCallback.BlockActions) == 0 {
		return c.NoContent(http.StatusBadRequest)
	}

	action := message.ActionCallback.BlockActions[0]
	switch action.ActionID {
	case event.RedeemActionID:
		h.bot.Command(c.Request().Context(), bot.Message{
			UserID:   message.User.ID,
			Username: message.User.Name,
		}, "buy", []string{action.Value}, h.eventSvc.Replier(message.Channel.ID, message.Container.MessageTs))
		return c.NoContent(http.StatusOK)
	}

	return c.NoContent(http.StatusBadRequest)
}
