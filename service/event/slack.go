package event

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/webuild-community/honor/bot"
	"github.com/webuild-community/honor/model"
	"go.uber.org/zap"
)

// RedeemActionID identifies the redeem buttons of the shop listing.
const RedeemActionID = "redeem"

type slackSvc struct {
	signingSecret string
	logger        *zap.Logger
	client        *slack.Client

	names sync.Map
}

// NewSlackService --
func NewSlackService(logger *zap.Logger, client *slack.Client, signingSecret string) Service {
	return &slackSvc{
		signingSecret: signingSecret,
		logger:        logger,
		client:        client,
	}
}

func (s *slackSvc) Authenticate(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, s.signingSecret)
	if err != nil {
		s.logger.Error("cannot init secret verifier", zap.Error(err))
		return err
	}
	if _, err := sv.Write(body); err != nil {
		s.logger.Error("cannot write body", zap.Error(err))
		return err
	}
	if err := sv.Ensure(); err != nil {
		s.logger.Error("cannot ensure", zap.Error(err))
		return err
	}
	return nil
}

func (s *slackSvc) Verify(header http.Header, body []byte) (interface{}, error) {
	if err := s.Authenticate(header, body); err != nil {
		return nil, err
	}
	return slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
}

func (s *slackSvc) Username(ctx context.Context, userID string) string {
	if v, ok := s.names.Load(userID); ok {
		return v.(string)
	}

	sUser, err := s.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		s.logger.Error("cannot get slack user info", zap.Error(err), zap.String("user_id", userID))
		return userID
	}
	name := sUser.Profile.DisplayName
	if name == "" {
		name = sUser.Name
	}
	s.names.Store(userID, name)
	return name
}

func (s *slackSvc) Replier(channel, ts string) bot.Replier {
	return &slackReplier{client: s.client, channel: channel, ts: ts}
}

type slackReplier struct {
	client  *slack.Client
	channel string
	ts      string
}

// mrkdwn marks bold with single asterisks.
func mrkdwn(text string) string {
	return strings.ReplaceAll(text, "**", "*")
}

func (r *slackReplier) Reply(ctx context.Context, text string) error {
	_, _, _, err := r.client.SendMessageContext(ctx, r.channel,
		slack.MsgOptionText(mrkdwn(text), false),
		slack.MsgOptionTS(r.ts),
	)
	return err
}

func (r *slackReplier) Catalog(ctx context.Context, items []model.Item) error {
	_, _, _, err := r.client.SendMessageContext(ctx, r.channel,
		slack.MsgOptionBlocks(CatalogBlocks(items)...),
		slack.MsgOptionText(bot.ShopTitle, false),
		slack.MsgOptionTS(r.ts),
	)
	return err
}

// CatalogBlocks renders the shop as Block Kit sections.
func CatalogBlocks(items []model.Item) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "*"+bot.ShopTitle+"*", false, false), nil, nil),
		slack.NewDividerBlock(),
	}
	for _, it := range items {
		text := "*" + bot.ItemTitle(it) + "*\n" + bot.ItemLine(it)
		button := slack.NewButtonBlockElement(RedeemActionID, strconv.FormatUint(uint64(it.ID), 10),
			slack.NewTextBlockObject("plain_text", "Redeem", false, false))
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", text, false, false), nil, slack.NewAccessory(button)))
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", bot.ShopFooter, false, false)))
	return blocks
}
