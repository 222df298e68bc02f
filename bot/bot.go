// Package bot turns inbound chat messages into accrual, catalog and
// purchase operations, independent of the chat transport.
package bot

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/webuild-community/honor/model"
	"github.com/webuild-community/honor/service/item"
	"github.com/webuild-community/honor/service/queue"
	"github.com/webuild-community/honor/service/transaction"
	"github.com/webuild-community/honor/service/user"
	"go.uber.org/zap"
)

const Prefix = "!"

// Message is an inbound chat message from any transport.
type Message struct {
	// EventID identifies the message for accrual deduplication.
	EventID  string
	UserID   string
	Username string
	Text     string
}

// Replier answers the message being handled.
type Replier interface {
	Reply(ctx context.Context, text string) error
	// Catalog renders the shop listing. items is never empty.
	Catalog(ctx context.Context, items []model.Item) error
}

type Bot struct {
	logger       *zap.Logger
	queueSvc     queue.Service
	userSvc      user.Service
	itemSvc      item.Service
	purchaseSvc  transaction.Service
	storeTimeout time.Duration
}

func New(logger *zap.Logger, queueSvc queue.Service, userSvc user.Service, itemSvc item.Service, purchaseSvc transaction.Service) *Bot {
	return &Bot{
		logger:       logger,
		queueSvc:     queueSvc,
		userSvc:      userSvc,
		itemSvc:      itemSvc,
		purchaseSvc:  purchaseSvc,
		storeTimeout: 10 * time.Second,
	}
}

// IsCommand reports whether text is addressed to the bot.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), Prefix)
}

// Handle processes one message. Plain messages are queued for accrual and
// get no reply; commands always get exactly one reply.
func (b *Bot) Handle(ctx context.Context, msg Message, r Replier) {
	if !IsCommand(msg.Text) {
		b.enqueue(msg)
		return
	}

	fields := strings.Fields(strings.TrimSpace(msg.Text))
	name := strings.ToLower(strings.TrimPrefix(fields[0], Prefix))
	b.Command(ctx, msg, name, fields[1:], r)
}

// Command runs a named command. Unknown commands are ignored.
func (b *Bot) Command(ctx context.Context, msg Message, name string, args []string, r Replier) {
	ctx, cancel := context.WithTimeout(ctx, b.storeTimeout)
	defer cancel()

	logger := b.logger.With(zap.String("user_id", msg.UserID), zap.String("command", name))
	var err error
	switch name {
	case "start":
		err = b.start(ctx, logger, msg, r)
	case "honor":
		err = b.honor(ctx, logger, msg, r)
	case "shop":
		err = b.shop(ctx, logger, r)
	case "buy":
		err = b.buy(ctx, logger, msg, args, r)
	default:
		return
	}
	if err != nil {
		logger.Error("cannot send reply", zap.Error(err))
	}
}

func (b *Bot) enqueue(msg Message) {
	if msg.UserID == "" {
		return
	}
	if err := b.queueSvc.Add(model.Activity{
		EventID:  msg.EventID,
		UserID:   msg.UserID,
		Username: msg.Username,
		SeenAt:   time.Now().UTC(),
	}); err != nil {
		b.logger.Error("cannot add activity to queue", zap.Error(err), zap.String("user_id", msg.UserID))
	}
}

// DrainActivity credits every queued activity. It stops once ctx is done and
// leaves the rest queued; an activity whose credit was cut short by ctx is
// queued again. Other failures are logged and dropped. Only one drain runs at
// a time.
func (b *Bot) DrainActivity(ctx context.Context) int {
	if !b.queueSvc.TryConsuming() {
		return 0
	}
	defer b.queueSvc.DoneConsuming()

	credited := 0
	for ctx.Err() == nil {
		e := b.queueSvc.Consume()
		if e == nil {
			break
		}
		a, ok := e.(model.Activity)
		if !ok {
			continue
		}
		ok, err := b.userSvc.Accrue(ctx, a)
		if err != nil {
			if ctx.Err() != nil {
				b.requeue(a)
				break
			}
			b.logger.Error("cannot accrue points", zap.Error(err), zap.String("user_id", a.UserID))
			continue
		}
		if ok {
			credited++
		}
	}
	return credited
}

func (b *Bot) requeue(a model.Activity) {
	if err := b.queueSvc.Add(a); err != nil {
		b.logger.Error("cannot requeue activity", zap.Error(err), zap.String("user_id", a.UserID))
	}
}

func (b *Bot) start(ctx context.Context, logger *zap.Logger, msg Message, r Replier) error {
	_, created, err := b.userSvc.Register(ctx, msg.UserID, msg.Username)
	if err != nil {
		logger.Error("cannot register user", zap.Error(err))
		return r.Reply(ctx, MsgRegisterFailed)
	}
	if !created {
		return r.Reply(ctx, MsgAlreadyRegistered)
	}
	return r.Reply(ctx, Registered(msg.Username))
}

func (b *Bot) honor(ctx context.Context, logger *zap.Logger, msg Message, r Replier) error {
	u, _, err := b.userSvc.Find(ctx, msg.UserID)
	if err != nil {
		logger.Error("cannot find user", zap.Error(err))
		return r.Reply(ctx, MsgBalanceFailed)
	}
	return r.Reply(ctx, Balance(msg.Username, u.Points))
}

func (b *Bot) shop(ctx context.Context, logger *zap.Logger, r Replier) error {
	items, err := b.itemSvc.Catalog(ctx)
	if err != nil {
		logger.Error("cannot fetch shop", zap.Error(err))
		return r.Reply(ctx, MsgShopFailed)
	}
	if len(items) == 0 {
		return r.Reply(ctx, MsgShopEmpty)
	}
	return r.Catalog(ctx, items)
}

func (b *Bot) buy(ctx context.Context, logger *zap.Logger, msg Message, args []string, r Replier) error {
	if len(args) == 0 {
		return r.Reply(ctx, MsgBuyUsage)
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return r.Reply(ctx, MsgBuyUsage)
	}
	// an integer no item can carry
	if err != nil || itemID < 1 || itemID > math.MaxUint32 {
		return r.Reply(ctx, MsgItemUnavailable)
	}

	receipt, err := b.purchaseSvc.Redeem(ctx, msg.UserID, uint(itemID))
	var insufficient *transaction.InsufficientBalanceError
	switch {
	case err == nil:
		logger.Info("item redeemed",
			zap.Uint("item_id", receipt.Item.ID),
			zap.Int64("cost", receipt.Redemption.Cost),
			zap.String("code", receipt.Redemption.Code))
		return r.Reply(ctx, Redeemed(receipt))
	case errors.Is(err, transaction.ErrItemUnavailable):
		return r.Reply(ctx, MsgItemUnavailable)
	case errors.Is(err, transaction.ErrOutOfStock):
		return r.Reply(ctx, MsgOutOfStock)
	case errors.Is(err, transaction.ErrNotRegistered):
		return r.Reply(ctx, MsgNotRegistered)
	case errors.As(err, &insufficient):
		return r.Reply(ctx, InsufficientBalance(insufficient.Cost, insufficient.Balance))
	default:
		logger.Error("cannot redeem item", zap.Error(err), zap.Int64("item_id", itemID))
		return r.Reply(ctx, MsgTransactionFailed)
	}
}
