package service

import (
	"context"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
	tb "gopkg.in/telebot.v3"
)

type fakeRegistry struct {
	handlers map[string]tb.HandlerFunc
}

func (r *fakeRegistry) Handle(endpoint interface{}, h tb.HandlerFunc, _ ...tb.MiddlewareFunc) {
	switch e := endpoint.(type) {
	case string:
		r.handlers[e] = h
	case tb.CallbackEndpoint:
		r.handlers[e.CallbackUnique()] = h
	}
}

// fakeContext only answers what the handlers read
type fakeContext struct {
	tb.Context
	sender   *tb.User
	text     string
	callback *tb.Callback
}

func (c *fakeContext) Sender() *tb.User       { return c.sender }
func (c *fakeContext) Text() string           { return c.text }
func (c *fakeContext) Callback() *tb.Callback { return c.callback }

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	r := &fakeRegistry{handlers: map[string]tb.HandlerFunc{}}
	env.svc.Register(context.Background(), r)

	for _, endpoint := range []string{
		"/start", "/help", "/stats", "/chrome", "/anydesk", "/telegram", "/yaware",
		tb.OnText, btnRate.CallbackUnique(), btnReply.CallbackUnique(),
	} {
		require.Contains(t, r.handlers, endpoint)
	}

	user := &tb.User{ID: 20}
	require.NoError(t, r.handlers["/help"](&fakeContext{sender: user}))
	require.NoError(t, r.handlers[tb.OnText](&fakeContext{sender: user, text: btnNeedAdmin}))
	require.Equal(t, userWaitForProblem, env.svc.sessions.state(user.ID))

	require.NoError(t, r.handlers[btnRate.CallbackUnique()](&fakeContext{
		sender:   user,
		callback: &tb.Callback{Sender: user, Data: "2"},
	}))
	require.Len(t, env.ratings.ratings, 1)

	msgs := env.bot.sentTo("20")
	require.Equal(t, textHelp, msgs[0].text())
	require.Equal(t, textHelpRequest, msgs[1].text())
}

type fakeCommandSetter struct {
	set    []interface{}
	setErr error
	get    []tb.Command
}

func (f *fakeCommandSetter) SetCommands(opts ...interface{}) error {
	f.set = opts
	return f.setErr
}

func (f *fakeCommandSetter) Commands(...interface{}) ([]tb.Command, error) {
	return f.get, nil
}

func TestSetupCommands(t *testing.T) {
	env := newTestEnv(t)

	cs := &fakeCommandSetter{get: botCommands()}
	env.svc.setupCommands(cs)
	require.Len(t, cs.set, 1)
	cmds, ok := cs.set[0].([]tb.Command)
	require.True(t, ok)
	require.Len(t, cmds, 6)
	require.Equal(t, "start", cmds[0].Text)
	require.Equal(t, "Установить YaWare", cmds[5].Description)

	// failures are not fatal
	env.svc.setupCommands(&fakeCommandSetter{setErr: errors.New("unauthorized")})
	env.svc.setupCommands(&fakeCommandSetter{})
}

func TestKeyboards(t *testing.T) {
	texts := func(m *tb.ReplyMarkup) [][]string {
		var out [][]string
		for _, row := range m.ReplyKeyboard {
			var r []string
			for _, b := range row {
				r = append(r, b.Text)
			}
			out = append(out, r)
		}
		return out
	}

	require.Equal(t, [][]string{
		{btnInstallTracker},
		{btnInstalled, btnOtherPrograms},
		{btnNeedAdmin},
	}, texts(mainKeyboard()))
	require.Equal(t, [][]string{
		{btnWindows, btnMacOS, btnPlugin},
		{btnInstalled, btnNeedAdmin},
		{btnBack},
	}, texts(trackerKeyboard()))
	require.Equal(t, [][]string{
		{btnContactAdmin},
		{btnRetry, btnBack},
	}, texts(helpKeyboard()))
	require.Equal(t, [][]string{{btnBack}}, texts(backKeyboard()))
	require.Equal(t, [][]string{
		{btnSendRequest},
		{btnBack, btnOtherPrograms},
	}, texts(requestKeyboard()))
	require.Equal(t, [][]string{
		{"1️⃣", "2️⃣", "3️⃣"},
		{"4️⃣", "5️⃣", "6️⃣"},
		{btnMainMenu, btnNeedAdmin},
	}, texts(otherProgramsKeyboard()))
	require.True(t, mainKeyboard().ResizeKeyboard)

	rating := ratingKeyboard().InlineKeyboard[0]
	require.Len(t, rating, 3)
	for i, b := range rating {
		require.Equal(t, btnRate.Unique, b.Unique)
		require.Equal(t, string(rune('1'+i)), b.Data)
	}
}
