package telegram

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

const (
	baseContextKey = "base_context"
	accessDenied   = "Access denied."
	maxPhotoBytes  = 20 << 20
)

// Handler runs a conversational turn.
type Handler interface {
	Handle(ctx context.Context, channel core.Channel, message string, image *core.Image) (core.Response, error)
}

// fileFetcher is the part of *tele.Bot used to download photos.
type fileFetcher interface {
	File(file *tele.File) (io.ReadCloser, error)
}

type Bot struct {
	bot     *tele.Bot
	files   fileFetcher
	sender  *sender
	handler Handler
	router  core.CmdRouter
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	handler Handler,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:       cfg.Token,
		Poller:      &tele.LongPoller{Timeout: 10 * time.Second},
		Synchronous: false,
		OnError: func(err error, c tele.Context) {
			log.FromCtx(ctx).Error().Err(err).Msg("telegram handler failed")
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		files:   b,
		sender:  newSender(b),
		handler: handler,
		router:  router,
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(ownerOnly(bot.ownerID))

	for _, cmd := range router.ListCommands() {
		b.Handle("/"+cmd.Name(), bot.handleCommand)
	}
	b.Handle(tele.OnText, bot.handleText)
	b.Handle(tele.OnPhoto, bot.handlePhoto)

	return bot, nil
}

// ownerOnly rejects every sender except the configured owner.
func ownerOnly(ownerID int64) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || sender.ID != ownerID {
				return c.Send(accessDenied)
			}
			return next(c)
		}
	}
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Int64("owner", b.ownerID).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) requestCtx(c tele.Context) context.Context {
	ctx, ok := c.Get(baseContextKey).(context.Context)
	if !ok {
		ctx = context.Background()
	}
	return log.WithFields(ctx, "chat", fmt.Sprint(c.Chat().ID))
}

func (b *Bot) handleCommand(c tele.Context) error {
	ctx := b.requestCtx(c)
	out, _ := b.router.Execute(ctx, c.Text())
	return b.sender.sendMarkdown(ctx, c.Chat(), out, false)
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := b.requestCtx(c)

	if out, handled := b.router.Execute(ctx, c.Text()); handled {
		return b.sender.sendMarkdown(ctx, c.Chat(), out, false)
	}

	_ = c.Notify(tele.Typing)
	return b.reply(ctx, c, c.Text(), nil)
}

func (b *Bot) handlePhoto(c tele.Context) error {
	ctx := b.requestCtx(c)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.UploadingPhoto)

	photo := c.Message().Photo
	if photo == nil {
		return nil
	}

	img, err := b.download(&photo.File)
	if err != nil {
		logger.Error().Err(err).Msg("failed to download photo")
		return c.Send("I couldn't download that photo, please try again.")
	}

	return b.reply(ctx, c, c.Message().Caption, img)
}

func (b *Bot) download(file *tele.File) (*core.Image, error) {
	rc, err := b.files.File(file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPhotoBytes))
	if err != nil {
		return nil, err
	}
	return &core.Image{Data: data, MIME: mimetype.Detect(data).String()}, nil
}

func (b *Bot) reply(ctx context.Context, c tele.Context, text string, img *core.Image) error {
	resp, err := b.handler.Handle(ctx, core.ChannelTelegram, text, img)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("turn rejected")
		return c.Send("Please send some text or a photo.")
	}
	return b.sender.sendMarkdown(ctx, c.Chat(), resp.Content, false)
}

// Channel and Mirror make the bot a mirror target for turns that started
// elsewhere: the owner sees both sides of the exchange.
func (b *Bot) Channel() core.Channel {
	return core.ChannelTelegram
}

func (b *Bot) Mirror(ctx context.Context, turn core.Turn) error {
	owner := &tele.User{ID: b.ownerID}
	userLine, replyLine := mirrorLines(turn)

	if err := b.sender.sendMarkdown(ctx, owner, userLine, true); err != nil {
		return fmt.Errorf("failed to mirror user message: %w", err)
	}
	if err := b.sender.sendMarkdown(ctx, owner, replyLine, true); err != nil {
		return fmt.Errorf("failed to mirror reply: %w", err)
	}
	return nil
}

func mirrorLines(turn core.Turn) (string, string) {
	user := fmt.Sprintf("👤 You (%s): %s", turn.Channel, turn.User)
	reply := fmt.Sprintf("🤖 %s (%s): %s", core.AppName, turn.Channel, turn.Response.Content)
	return user, reply
}

var _ core.Mirror = (*Bot)(nil)
