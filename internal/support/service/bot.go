package service

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	tb "gopkg.in/telebot.v3"

	"github.com/Laisky/laisky-support-bot/library/log"
)

const sessionGCInterval = time.Minute

// programCommands shortcuts shown in the telegram command menu
var programCommands = []struct {
	key, name string
}{
	{"chrome", "Google Chrome"},
	{"anydesk", "AnyDesk"},
	{"telegram", "Telegram"},
	{"yaware", "YaWare"},
}

// NewBot create new telegram bot with long polling
func NewBot(token, api string, pollTimeout time.Duration) (*tb.Bot, error) {
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}

	logger := log.Logger.Named("telebot")
	bot, err := tb.NewBot(tb.Settings{
		Token: token,
		URL:   api,
		Poller: &tb.LongPoller{
			Timeout: pollTimeout,
		},
		OnError: func(err error, c tb.Context) {
			var uid int64
			if c != nil && c.Sender() != nil {
				uid = c.Sender().ID
			}
			logger.Error("handle telegram update", zap.Error(err), zap.Int64("uid", uid))
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "new telegram bot")
	}

	return bot, nil
}

type handlerRegistry interface {
	Handle(endpoint interface{}, h tb.HandlerFunc, m ...tb.MiddlewareFunc)
}

type commandSetter interface {
	SetCommands(opts ...interface{}) error
	Commands(opts ...interface{}) ([]tb.Command, error)
}

// Register binds every command, button and callback of the support bot
func (s *Support) Register(ctx context.Context, r handlerRegistry) {
	r.Handle("/start", func(c tb.Context) error {
		return s.onStart(ctx, c.Sender())
	})
	r.Handle("/help", func(c tb.Context) error {
		return s.onHelp(ctx, c.Sender())
	})
	r.Handle("/stats", func(c tb.Context) error {
		return s.onStats(ctx, c.Sender())
	})
	for _, cmd := range programCommands {
		key := cmd.key
		r.Handle("/"+key, func(c tb.Context) error {
			return s.onProgramCommand(ctx, c.Sender(), key)
		})
	}

	r.Handle(tb.OnText, func(c tb.Context) error {
		return s.onText(ctx, c.Sender(), c.Text())
	})
	r.Handle(&btnRate, func(c tb.Context) error {
		return s.onRating(ctx, c.Callback())
	})
	r.Handle(&btnReply, func(c tb.Context) error {
		return s.onAdminReply(ctx, c.Callback())
	})
}

func botCommands() []tb.Command {
	cmds := []tb.Command{
		{Text: "start", Description: "Начать работу с ботом"},
		{Text: "help", Description: "Получить помощь"},
	}
	for _, p := range programCommands {
		cmds = append(cmds, tb.Command{Text: p.key, Description: "Установить " + p.name})
	}

	return cmds
}

// setupCommands publishes the command menu, failures are logged only
func (s *Support) setupCommands(cs commandSetter) {
	if err := cs.SetCommands(botCommands()); err != nil {
		s.logger.Error("set bot commands", zap.Error(err))
		return
	}

	cmds, err := cs.Commands()
	switch {
	case err != nil:
		s.logger.Error("get bot commands", zap.Error(err))
	case len(cmds) == 0:
		s.logger.Warn("commands were not set properly")
	default:
		s.logger.Info("bot commands set", zap.Int("n", len(cmds)))
	}
}

func (s *Support) gcSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.gc(); n > 0 {
				s.logger.Debug("drop expired sessions", zap.Int("n", n))
			}
		}
	}
}

// Run registers the handlers and polls telegram until ctx is done
func (s *Support) Run(ctx context.Context, bot *tb.Bot) error {
	s.Register(ctx, bot)
	s.setupCommands(bot)
	go s.gcSessions(ctx, sessionGCInterval)

	go func() {
		<-ctx.Done()
		s.logger.Info("stop telegram polling")
		bot.Stop()
	}()

	s.logger.Info("start telegram polling", zap.String("bot", bot.Me.Username))
	bot.Start()
	return nil
}
