// Package service is the conversation layer of the support bot.
//
// It walks users through the tracker installation menus, answers free text
// problems from the FAQ and forwards unresolved requests to the admin chats.
package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	tb "gopkg.in/telebot.v3"

	"github.com/Laisky/laisky-support-bot/internal/support/dao"
	"github.com/Laisky/laisky-support-bot/library/faq"
	"github.com/Laisky/laisky-support-bot/library/log"
)

// image files under Config.ImagesDir
const (
	imageWelcome  = "help_bot.png"
	imageAdmin    = "serio.png"
	imageSadRobot = "sad_robot.png"
)

// Messenger is the part of *tb.Bot the service talks through
type Messenger interface {
	Send(to tb.Recipient, what interface{}, opts ...interface{}) (*tb.Message, error)
	EditReplyMarkup(msg tb.Editable, markup *tb.ReplyMarkup) (*tb.Message, error)
	ChatByID(id int64) (*tb.Chat, error)
	Respond(c *tb.Callback, resp ...*tb.CallbackResponse) error
}

// Resolver answers a free text question
type Resolver interface {
	Resolve(ctx context.Context, question string) faq.Result
}

// Throttle decides whether a user may send one more update
type Throttle interface {
	Allow(uid int64) bool
}

// Config of the support service
type Config struct {
	// AdminChatID receives help requests
	AdminChatID int64
	// TrackerAdminChatID receives tracker installation checks
	TrackerAdminChatID int64
	// AdminIDs users allowed to run admin commands
	AdminIDs []int64
	// FallbackContacts shown to users when a request can not be forwarded
	FallbackContacts []string
	ImagesDir        string
	SessionTTL       time.Duration
	// DownloadURLs overrides download links by program key
	DownloadURLs map[string]string
}

// Stores persistence used by the service
type Stores struct {
	Tickets     dao.TicketCounter
	Ratings     dao.RatingStore
	Escalations dao.EscalationLog
}

// Support telegram support bot
type Support struct {
	bot      Messenger
	resolver Resolver
	stores   Stores
	throttle Throttle
	cfg      Config
	sessions *sessionStore
	logger   logSDK.Logger
	now      func() time.Time
}

// Option optional dependency of Support
type Option func(*Support) error

// WithThrottle drops updates of users over the limit
func WithThrottle(t Throttle) Option {
	return func(s *Support) error {
		if t == nil {
			return errors.New("throttle is nil")
		}
		s.throttle = t
		return nil
	}
}

// WithLogger replace the default logger
func WithLogger(logger logSDK.Logger) Option {
	return func(s *Support) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		s.logger = logger
		return nil
	}
}

// New create new support service
func New(bot Messenger, resolver Resolver, stores Stores, cfg Config, opts ...Option) (*Support, error) {
	switch {
	case bot == nil:
		return nil, errors.New("bot is nil")
	case resolver == nil:
		return nil, errors.New("resolver is nil")
	case stores.Tickets == nil:
		return nil, errors.New("ticket counter is nil")
	case stores.Ratings == nil:
		return nil, errors.New("rating store is nil")
	case cfg.AdminChatID == 0:
		return nil, errors.New("admin chat id is required")
	}

	if stores.Escalations == nil {
		stores.Escalations = dao.NopEscalationLog{}
	}
	if cfg.TrackerAdminChatID == 0 {
		cfg.TrackerAdminChatID = cfg.AdminChatID
	}

	s := &Support{
		bot:      bot,
		resolver: resolver,
		stores:   stores,
		cfg:      cfg,
		sessions: newSessionStore(cfg.SessionTTL),
		logger:   log.Logger.Named("support"),
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "apply option")
		}
	}

	return s, nil
}

func (s *Support) imagePath(name string) string {
	return filepath.Join(s.cfg.ImagesDir, name)
}

func (s *Support) downloadURL(key string) string {
	if u := s.cfg.DownloadURLs[key]; u != "" {
		return u
	}
	if u, ok := defaultTrackerURLs[key]; ok {
		return u
	}
	if p, ok := programByKey(key); ok {
		return p.defaultURL
	}

	return ""
}

func (s *Support) isAdmin(uid int64) bool {
	for _, id := range s.cfg.AdminIDs {
		if id == uid {
			return true
		}
	}

	return false
}
