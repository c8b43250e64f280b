package service

import (
	"context"
	"strconv"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	tb "gopkg.in/telebot.v3"

	"github.com/Laisky/laisky-support-bot/internal/support/model"
)

// displayName is `@username`, or `id<uid>` for users without username
func displayName(user *tb.User) string {
	if user.Username != "" {
		return "@" + user.Username
	}

	return "id" + strconv.FormatInt(user.ID, 10)
}

// escalateInstall asks the tracker admins to check the installation
func (s *Support) escalateInstall(ctx context.Context, user *tb.User) error {
	defer s.sessions.clear(user.ID)

	esc := s.newEscalation(model.EscalationInstall, user, s.cfg.TrackerAdminChatID)
	err := s.sendPhoto(tb.ChatID(esc.ChatID), imageAdmin,
		textAdminInstallRequest(esc.Username), adminReplyKeyboard(user.ID))

	return s.finishEscalation(ctx, user, esc, err, nil)
}

// escalateHelp opens a ticket in the admin chat with the stored problem
func (s *Support) escalateHelp(ctx context.Context, user *tb.User) error {
	defer s.sessions.clear(user.ID)
	logger := s.logger.With(zap.Int64("uid", user.ID))

	esc := s.newEscalation(model.EscalationHelp, user, s.cfg.AdminChatID)
	esc.Message = textUnknownUserMessage
	if msg, ok := s.sessions.data(user.ID, dataUserMessage); ok && msg != "" {
		esc.Message = msg
	}

	ticket, err := s.stores.Tickets.Next(ctx)
	if err != nil {
		logger.Error("allocate ticket, fallback to 1", zap.Error(err))
		ticket = 1
	}
	esc.Ticket = ticket

	err = s.sendPhoto(tb.ChatID(esc.ChatID), imageAdmin,
		textAdminHelpRequest(ticket, esc.Username, esc.Message), adminReplyKeyboard(user.ID))

	return s.finishEscalation(ctx, user, esc, err, func() error {
		return s.send(user, textAnydeskRecommendation,
			urlButton(textInstallAnydesk, s.downloadURL("anydesk")))
	})
}

func (s *Support) newEscalation(kind model.EscalationKind, user *tb.User, chatID int64) *model.Escalation {
	return &model.Escalation{
		ID:        gutils.UUID7(),
		Kind:      kind,
		UserID:    user.ID,
		Username:  displayName(user),
		ChatID:    chatID,
		CreatedAt: s.now().UTC(),
	}
}

// finishEscalation records the escalation and tells the user how it went.
// beforeConfirm runs only after a successful delivery.
func (s *Support) finishEscalation(ctx context.Context,
	user *tb.User,
	esc *model.Escalation,
	sendErr error,
	beforeConfirm func() error,
) error {
	logger := s.logger.With(
		zap.Int64("uid", user.ID),
		zap.String("escalation", esc.ID),
		zap.String("kind", string(esc.Kind)),
	)

	esc.Delivered = sendErr == nil
	if err := s.stores.Escalations.Record(ctx, esc); err != nil {
		logger.Error("record escalation", zap.Error(err))
	}

	if sendErr != nil {
		logger.Error("send request to admin chat",
			zap.Int64("chat", esc.ChatID), zap.Error(sendErr))
		if _, err := s.bot.Send(user, textRequestFailed(s.cfg.FallbackContacts),
			&tb.SendOptions{ReplyMarkup: mainKeyboard()}); err != nil {
			return errors.Wrap(err, "send request failed msg")
		}
		return nil
	}

	logger.Info("request sent to admin chat",
		zap.Int64("chat", esc.ChatID), zap.Int64("ticket", esc.Ticket))
	if beforeConfirm != nil {
		if err := beforeConfirm(); err != nil {
			return errors.WithStack(err)
		}
	}
	if err := s.send(user, textRequestSent, nil); err != nil {
		return errors.WithStack(err)
	}

	return s.send(user, textRateRequest, ratingKeyboard())
}
