package handler

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo"
	"github.com/slack-go/slack/slackevents"
	"github.com/webuild-community/honor/bot"
	"github.com/webuild-community/honor/service/event"
	"go.uber.org/zap"
)

type EventHandler struct {
	bot      *bot.Bot
	eventSvc event.Service
	logger   *zap.Logger
}

func NewEventHandler(e *echo.Echo, logger *zap.Logger, b *bot.Bot, eventSvc event.Service) {
	handler := &EventHandler{
		logger:   logger,
		bot:      b,
		eventSvc: eventSvc,
	}

	e.POST("/slack/events", handler.events)
}

func (h *EventHandler) events(c echo.Context) error {
	body, err := ioutil.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("cannot read request body", zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}

	event, err := h.eventSvc.Verify(c.Request().Header, body)
	if err != nil {
		h.logger.Error("cannot verify event", zap.Error(err))
		return c.NoContent(http.StatusUnauthorized)
	}

	eventsAPIEvent, ok := event.(slackevents.EventsAPIEvent)
	if !ok {
		h.logger.Error("cannot parse event")
		return c.NoContent(http.StatusInternalServerError)
	}

	if eventsAPIEvent.Type == slackevents.URLVerification {
		var r *slackevents.ChallengeResponse
		err := json.Unmarshal([]byte(body), &r)
		if err != nil {
			h.logger.Error("cannot unmarshal body", zap.Error(err))
			return c.NoContent(http.StatusInternalServerError)
		}
		c.Response().Header().Set("Content-Type", "text")
		return c.HTMLBlob(http.StatusOK, []byte(r.Challenge))
	}

	// slack redelivers events it considers timed out; the first delivery
	// was already handled, running a purchase twice would charge twice
	if c.Request().Header.Get("X-Slack-Retry-Num") != "" {
		return c.NoContent(http.StatusOK)
	}

	if eventsAPIEvent.Type == slackevents.CallbackEvent {
		switch ev := eventsAPIEvent.InnerEvent.Data.(type) {
		case *slackevents.MessageEvent:
			if ev.BotID != "" || ev.SubType != "" || ev.User == "" {
				break
			}
			h.logger.Debug("received event", zap.String("user_id", ev.User), zap.String("event", "MessageEvent"))

			ctx := c.Request().Context()
			h.bot.Handle(ctx, bot.Message{
				EventID:  "slack:" + ev.Channel + ":" + ev.TimeStamp,
				UserID:   ev.User,
				Username: h.eventSvc.Username(ctx, ev.User),
				Text:     ev.Text,
			}, h.eventSvc.Replier(ev.Channel, ev.TimeStamp))
		}
	}

	return c.NoContent(http.StatusOK)
}
