package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-support-bot/library/faq"
)

func newTestModel(t *testing.T, source faq.Source) Model {
	t.Helper()
	resolver, err := faq.NewResolver(source)
	require.NoError(t, err)
	return NewModel(context.Background(), resolver)
}

func score(t *testing.T, m Model, query string) Model {
	t.Helper()
	m.input.SetValue(query)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = next.(Model)
	require.True(t, m.running)
	require.Equal(t, query, m.query)

	next, _ = m.Update(m.rank(query)())
	m = next.(Model)
	require.False(t, m.running)
	return m
}

func TestModelScoresEveryEntry(t *testing.T) {
	m := newTestModel(t, faq.StaticSource{
		{Question: "Как установить трекер на Windows?", Answer: "Скачай установщик."},
		{Question: "Как удалить AnyDesk?", Answer: "Через панель управления."},
	})
	require.Contains(t, m.View(), "type a question")

	m = score(t, m, "установить трекер windows")
	require.Len(t, m.scored, 2)
	require.InDelta(t, 1.0, m.scored[0].Score, 1e-9)
	require.Zero(t, m.scored[1].Score)
	require.Equal(t, 0, best(m.scored))

	view := m.View()
	require.Contains(t, view, "✅")
	require.Contains(t, view, "Скачай установщик.")
	require.Contains(t, view, "source ok, 2 entries")
}

func TestModelBelowThreshold(t *testing.T) {
	m := newTestModel(t, faq.StaticSource{
		{Question: "Что делать если трекер не устанавливается?", Answer: "Перезагрузи."},
	})

	// only трекер and устанавливается match, 2 of 4 tokens is not above 0.5
	m = score(t, m, "трекер не устанавливается как быть")
	require.Len(t, m.scored, 1)
	require.InDelta(t, 0.5, m.scored[0].Score, 1e-9)

	view := m.View()
	require.NotContains(t, view, "Перезагрузи.")
	require.Contains(t, view, "no answer")
}

func TestModelDegradedSource(t *testing.T) {
	m := newTestModel(t, faq.NewFileSource(t.TempDir()+"/missing.json"))

	m = score(t, m, "трекер")
	require.Equal(t, faq.StatusUnavailable, m.loaded.Status)
	require.Contains(t, m.View(), "source unavailable")
}

func TestModelStaleResultDropped(t *testing.T) {
	m := newTestModel(t, faq.StaticSource{{Question: "трекер", Answer: "a"}})
	m = score(t, m, "трекер")

	next, _ := m.Update(rankMsg{query: "другой вопрос"})
	m = next.(Model)
	require.Len(t, m.scored, 1)
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(t, faq.StaticSource{{Question: "трекер", Answer: "a"}})
	m = score(t, m, "трекер")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	require.Empty(t, m.input.Value())
	require.Nil(t, m.scored)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	require.True(t, m.quitting)
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestBest(t *testing.T) {
	require.Equal(t, -1, best(nil))
	require.Equal(t, -1, best([]faq.Scored{{Score: 0}}))
	require.Equal(t, 1, best([]faq.Scored{{Score: 0.5}, {Score: 0.7}, {Score: 0.7}}))
}
