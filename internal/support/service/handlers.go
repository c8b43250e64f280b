package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	tb "gopkg.in/telebot.v3"
)

func (s *Support) send(to tb.Recipient, what interface{}, markup *tb.ReplyMarkup) error {
	opts := &tb.SendOptions{
		ParseMode:             tb.ModeMarkdown,
		DisableWebPagePreview: true,
	}
	if markup != nil {
		opts.ReplyMarkup = markup
	}

	if _, err := s.bot.Send(to, what, opts); err != nil {
		return errors.Wrap(err, "send msg")
	}

	return nil
}

// sendPhoto sends an image with caption, or only the caption
// if the image can not be sent
func (s *Support) sendPhoto(to tb.Recipient, image, caption string, markup *tb.ReplyMarkup) error {
	photo := &tb.Photo{
		File:    tb.FromDisk(s.imagePath(image)),
		Caption: caption,
	}
	if err := s.send(to, photo, markup); err != nil {
		s.logger.Warn("send photo, fallback to text",
			zap.String("image", image), zap.Error(err))
		return s.send(to, caption, markup)
	}

	return nil
}

// onStart clears the conversation and shows the main menu
func (s *Support) onStart(_ context.Context, user *tb.User) error {
	s.sessions.clear(user.ID)
	return s.sendPhoto(user, imageWelcome, textWelcome, mainKeyboard())
}

func (s *Support) onHelp(_ context.Context, user *tb.User) error {
	return s.send(user, textHelp, nil)
}

// onProgramCommand handles /chrome, /anydesk, /telegram and /yaware
func (s *Support) onProgramCommand(ctx context.Context, user *tb.User, key string) error {
	if key == "yaware" {
		return s.showTrackerIntro(ctx, user)
	}

	p, ok := programByKey(key)
	if !ok {
		return errors.Errorf("unknown program %q", key)
	}

	return s.showProgram(user, p)
}

func (s *Support) onStats(ctx context.Context, user *tb.User) error {
	if !s.isAdmin(user.ID) {
		s.logger.Info("non admin asked for stats", zap.Int64("uid", user.ID))
		return s.send(user, textNotAdmin, nil)
	}

	st, err := s.stores.Ratings.Stats(ctx)
	if err != nil {
		return errors.Wrap(err, "load rating stats")
	}

	return s.send(user, textRatingStats(st.Total, st.ByRating), nil)
}

// onText dispatches plain text, menu buttons first,
// then the free text problem of a waiting user
func (s *Support) onText(ctx context.Context, user *tb.User, text string) error {
	logger := s.logger.With(zap.Int64("uid", user.ID))
	if s.throttle != nil && !s.throttle.Allow(user.ID) {
		logger.Debug("drop throttled message")
		return nil
	}

	switch text {
	// main menu
	case btnInstallTracker:
		return s.showTrackerIntro(ctx, user)
	case btnInstalled:
		return s.send(user, textInstallationSuccess, requestKeyboard())
	case btnOtherPrograms:
		return s.send(user, textOtherPrograms, otherProgramsKeyboard())
	case btnNeedAdmin:
		s.sessions.setState(user, userWaitForProblem)
		return s.send(user, textHelpRequest, backKeyboard())

	// tracker menu
	case btnWindows:
		return s.send(user, textTrackerDownload("Windows"), downloadButton(s.downloadURL(urlKeyWindows)))
	case btnMacOS:
		return s.send(user, textTrackerDownload("MacOS"), downloadButton(s.downloadURL(urlKeyMacOS)))
	case btnPlugin:
		return s.send(user, textPluginDownload, downloadButton(s.downloadURL(urlKeyPlugin)))
	case btnBack, btnMainMenu:
		return s.onStart(ctx, user)

	// admin requests
	case btnSendRequest:
		return s.escalateInstall(ctx, user)
	case btnContactAdmin:
		return s.escalateHelp(ctx, user)
	case btnRetry:
		return s.send(user, textRetry, backKeyboard())
	}

	if p, ok := programByButton(text); ok {
		return s.showProgram(user, p)
	}

	if s.sessions.state(user.ID) == userWaitForProblem {
		return s.answerProblem(ctx, user, text)
	}

	logger.Debug("ignore message out of conversation", zap.Int("len", len(text)))
	return nil
}

func (s *Support) showTrackerIntro(_ context.Context, user *tb.User) error {
	for _, msg := range []struct {
		text   string
		markup *tb.ReplyMarkup
	}{
		{textTrackerInfo, nil},
		{textTrackerDetails, nil},
		{textTrackerMoreInfo, trackerInfoKeyboard()},
		{textTrackerInstall, trackerKeyboard()},
	} {
		if err := s.send(user, msg.text, msg.markup); err != nil {
			return errors.Wrap(err, "send tracker intro")
		}
	}

	return nil
}

func (s *Support) showProgram(user *tb.User, p program) error {
	return s.send(user, textProgramCard(p), downloadButton(s.downloadURL(p.key)))
}

// answerProblem looks up the FAQ for a waiting user
func (s *Support) answerProblem(ctx context.Context, user *tb.User, text string) error {
	s.sessions.setData(user, dataUserMessage, text)

	result := s.resolver.Resolve(ctx, text)
	s.logger.Debug("resolve problem",
		zap.Int64("uid", user.ID),
		zap.Bool("found", result.Found),
		zap.Float64("score", result.Score),
		zap.String("source_status", string(result.SourceStatus)),
	)
	if result.Found {
		return s.send(user, result.Answer, helpKeyboard())
	}

	if err := s.sendPhoto(user, imageSadRobot, textNoSolution, nil); err != nil {
		return errors.Wrap(err, "send no solution")
	}

	return s.send(user, textOfferEscalation, helpKeyboard())
}
