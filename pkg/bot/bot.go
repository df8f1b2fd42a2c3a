package bot

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v3"

	"topicrelay/config"
	"topicrelay/pkg/lock"
	"topicrelay/pkg/logger"
	"topicrelay/pkg/relay"
	"topicrelay/service"
	"topicrelay/storage"
)

type Bot struct {
	Bot    *tele.Bot
	Log    logger.ILogger
	Cfg    *config.Config
	Svc    service.IServiceManager
	Router *relay.Router
}

func New(cfg *config.Config, stg storage.IStorage, locker lock.Locker, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("update handler failed", logger.Error(err))
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	transport := NewTransport(b, cfg.TeamChannelID)
	directory := relay.NewDirectory(stg.User())
	provisioner := relay.NewProvisioner(stg.User(), transport, locker, cfg.TeamChannelID, cfg.TransportTimeout, log)

	botID := cfg.BotID
	if botID == 0 && b.Me != nil {
		botID = b.Me.ID
	}

	router := relay.NewRouter(relay.Settings{
		UseTeamChannel:  cfg.UseTeamChannel,
		TeamChannelID:   cfg.TeamChannelID,
		BotID:           botID,
		CallTimeout:     cfg.TransportTimeout,
		FallbackNotice:  cfg.FallbackNotice,
		UnsupportedText: cfg.UnsupportedText,
	}, directory, provisioner, transport, log)

	bot := &Bot{
		Bot:    b,
		Log:    log,
		Cfg:    cfg,
		Svc:    service.New(stg, directory, log),
		Router: router,
	}
	bot.registerHandlers()
	return bot, nil
}

// Start polls for updates until Stop is called.
func (b *Bot) Start() {
	b.Log.Info("bot started",
		logger.String("username", b.Bot.Me.Username),
		logger.Bool("team_channel", b.Cfg.UseTeamChannel),
		logger.Int64("team_channel_id", b.Cfg.TeamChannelID),
	)
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
	b.Log.Info("bot stopped")
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)

	b.Bot.Handle(tele.OnText, b.handleRelay)
	b.Bot.Handle(tele.OnMedia, b.handleRelay)
	b.Bot.Handle(tele.OnContact, b.handleRelay)
	b.Bot.Handle(tele.OnLocation, b.handleRelay)
	b.Bot.Handle(tele.OnVenue, b.handleRelay)
	b.Bot.Handle(tele.OnDice, b.handleRelay)
	b.Bot.Handle(tele.OnGame, b.handleRelay)
}

func (b *Bot) handleRelay(c tele.Context) error {
	m := c.Message()
	if m == nil {
		return nil
	}
	b.Router.Relay(context.Background(), newEnvelope(m, b.Cfg.TeamChannelID))
	return nil
}

// handleStart registers the user with the deep-link source and announces them
// in their topic. /start typed anywhere but a private chat is relayed as text.
func (b *Bot) handleStart(c tele.Context) error {
	if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate || c.Sender() == nil {
		return b.handleRelay(c)
	}

	ctx := context.Background()
	payload := parseStartPayload(c.Message().Payload)

	sender := senderOf(c.Sender())
	sender.Source = payload.Source

	user, err := b.Svc.User().Register(ctx, sender)
	if err != nil {
		return nil
	}

	b.Router.Notify(ctx, *user, startAnnouncement(user, payload))
	return nil
}
