package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	tb "gopkg.in/telebot.v3"

	"github.com/Laisky/laisky-support-bot/internal/support/model"
)

// chatLink opens a private chat with the user
func chatLink(uid int64, username string) string {
	if username != "" {
		return "https://t.me/" + username
	}

	return "tg://user?id=" + strconv.FormatInt(uid, 10)
}

// onAdminReply answers the admin who pressed the reply button with a chat link
func (s *Support) onAdminReply(_ context.Context, cb *tb.Callback) error {
	logger := s.logger.With(zap.String("data", cb.Data))

	link, err := s.adminReplyLink(cb)
	if err != nil {
		logger.Error("build admin reply link", zap.Error(err))
		if rerr := s.bot.Respond(cb, &tb.CallbackResponse{Text: textAdminReplyError}); rerr != nil {
			return errors.Wrap(rerr, "respond callback")
		}
		return nil
	}

	logger.Debug("sent admin reply link", zap.String("link", link))
	if err = s.bot.Respond(cb); err != nil {
		return errors.Wrap(err, "respond callback")
	}

	return nil
}

func (s *Support) adminReplyLink(cb *tb.Callback) (string, error) {
	uid, err := strconv.ParseInt(strings.TrimSpace(cb.Data), 10, 64)
	if err != nil {
		return "", errors.Wrapf(err, "parse uid %q", cb.Data)
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return "", errors.New("callback without message")
	}

	chat, err := s.bot.ChatByID(uid)
	if err != nil {
		return "", errors.Wrapf(err, "get chat %d", uid)
	}

	link := chatLink(uid, chat.Username)
	if err = s.send(cb.Message.Chat, fmt.Sprintf(textAdminReplyLink, link), nil); err != nil {
		return "", errors.Wrap(err, "send reply link")
	}

	return link, nil
}

// onRating stores the stars a user gave and removes the rating buttons
func (s *Support) onRating(ctx context.Context, cb *tb.Callback) error {
	logger := s.logger.With(zap.String("data", cb.Data))
	if cb.Sender != nil {
		logger = logger.With(zap.Int64("uid", cb.Sender.ID))
	}

	stars, err := strconv.Atoi(strings.TrimSpace(cb.Data))
	rating := model.Rating{Rating: stars, CreatedAt: s.now().UTC()}
	if err != nil || !rating.Valid() || cb.Sender == nil {
		logger.Warn("invalid rating callback", zap.Error(err))
		if rerr := s.bot.Respond(cb, &tb.CallbackResponse{Text: textRatingError}); rerr != nil {
			return errors.Wrap(rerr, "respond callback")
		}
		return nil
	}
	rating.UserID = cb.Sender.ID

	if err = s.stores.Ratings.Save(ctx, rating); err != nil {
		logger.Error("save rating", zap.Error(err))
	} else {
		logger.Info("user rated the bot", zap.Int("rating", stars))
	}

	if err = s.send(cb.Sender, textRatingThanks, mainKeyboard()); err != nil {
		logger.Error("send rating thanks", zap.Error(err))
	}
	if cb.Message != nil {
		if _, err = s.bot.EditReplyMarkup(cb.Message, nil); err != nil {
			logger.Warn("remove rating keyboard", zap.Error(err))
		}
	}

	if err = s.bot.Respond(cb); err != nil {
		return errors.Wrap(err, "respond callback")
	}

	return nil
}
