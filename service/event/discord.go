package event

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/webuild-community/honor/bot"
	"github.com/webuild-community/honor/model"
	"go.uber.org/zap"
)

const shopColor = 0xff4d4d

// Discord feeds gateway messages into the bot.
type Discord struct {
	logger  *zap.Logger
	session *discordgo.Session
	bot     *bot.Bot
}

func NewDiscord(logger *zap.Logger, token string, b *bot.Bot) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	d := &Discord{logger: logger, session: session, bot: b}
	session.AddHandler(d.onMessage)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("discord bot online", zap.String("user", r.User.Username))
	})
	return d, nil
}

// Open connects to the gateway. Handlers run on discordgo's goroutines.
func (d *Discord) Open() error {
	return d.session.Open()
}

func (d *Discord) Close() error {
	return d.session.Close()
}

func (d *Discord) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	d.bot.Handle(context.Background(), bot.Message{
		EventID:  "discord:" + m.ID,
		UserID:   m.Author.ID,
		Username: m.Author.Username,
		Text:     m.Content,
	}, &discordReplier{session: s, message: m.Message})
}

type discordReplier struct {
	session *discordgo.Session
	message *discordgo.Message
}

func (r *discordReplier) Reply(ctx context.Context, text string) error {
	_, err := r.session.ChannelMessageSendReply(r.message.ChannelID, text, r.message.Reference(), discordgo.WithContext(ctx))
	return err
}

func (r *discordReplier) Catalog(ctx context.Context, items []model.Item) error {
	_, err := r.session.ChannelMessageSendEmbed(r.message.ChannelID, CatalogEmbed(items), discordgo.WithContext(ctx))
	return err
}

// CatalogEmbed renders the shop as a Discord embed card.
func CatalogEmbed(items []model.Item) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       bot.ShopTitle,
		Description: "Redeem your accumulated **points** for these rewards.",
		Color:       shopColor,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: bot.ShopFooter},
	}
	for _, it := range items {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   bot.ItemTitle(it),
			Value:  bot.ItemLine(it),
			Inline: true,
		})
	}
	return embed
}
