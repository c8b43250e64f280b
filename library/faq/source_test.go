package faq

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	t.Run("keep document order", func(t *testing.T) {
		entries, err := Parse([]byte(`{"b": "2", "a": "1", "c": "3"}`), FormatJSON)
		require.NoError(t, err)
		require.Equal(t, []Entry{
			{Question: "b", Answer: "2"},
			{Question: "a", Answer: "1"},
			{Question: "c", Answer: "3"},
		}, entries)
	})

	t.Run("duplicate keys", func(t *testing.T) {
		entries, err := Parse([]byte(`{"a": "1", "b": "2", "a": "3"}`), FormatJSON)
		require.NoError(t, err)
		require.Equal(t, []Entry{
			{Question: "a", Answer: "3"},
			{Question: "b", Answer: "2"},
		}, entries)
	})

	t.Run("empty object", func(t *testing.T) {
		entries, err := Parse([]byte(`{}`), FormatJSON)
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	for name, raw := range map[string]string{
		"empty":          ``,
		"array":          `["a"]`,
		"non string":     `{"a": 1}`,
		"null answer":    `{"a": null}`,
		"bool answer":    `{"a": true}`,
		"nested":         `{"a": {"b": "c"}}`,
		"trailing data":  `{"a": "b"} {}`,
		"truncated":      `{"a": "b"`,
		"invalid syntax": `{a: b}`,
	} {
		t.Run("malformed "+name, func(t *testing.T) {
			_, err := Parse([]byte(raw), FormatJSON)
			require.Error(t, err)
		})
	}
}

func TestParseYAML(t *testing.T) {
	raw := strings.Join([]string{
		"как установить трекер: |",
		"  Инструкция",
		"что такое anydesk: Программа удаленного доступа",
	}, "\n")

	entries, err := Parse([]byte(raw), FormatYAML)
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Question: "как установить трекер", Answer: "Инструкция\n"},
		{Question: "что такое anydesk", Answer: "Программа удаленного доступа"},
	}, entries)

	entries, err = Parse([]byte(""), FormatYAML)
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = Parse([]byte("- a\n- b\n"), FormatYAML)
	require.Error(t, err)
	_, err = Parse([]byte("a:\n  b: c\n"), FormatYAML)
	require.Error(t, err)

	for _, raw := range []string{"a: null\n", "a: ~\n", "a:\n", "~: b\n"} {
		_, err = Parse([]byte(raw), FormatYAML)
		require.Error(t, err, raw)
	}

	// quoted null is a string
	entries, err = Parse([]byte(`a: "null"`), FormatYAML)
	require.NoError(t, err)
	require.Equal(t, []Entry{{Question: "a", Answer: "null"}}, entries)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	jsonPath := filepath.Join(dir, "faq.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"вопрос": "ответ"}`), 0o600))
	r := NewFileSource(jsonPath).Load(ctx)
	require.Equal(t, StatusOK, r.Status)
	require.NoError(t, r.Err)
	require.Equal(t, []Entry{{Question: "вопрос", Answer: "ответ"}}, r.Entries)

	yamlPath := filepath.Join(dir, "faq.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("вопрос: ответ\n"), 0o600))
	r = NewFileSource(yamlPath).Load(ctx)
	require.Equal(t, StatusOK, r.Status)

	emptyPath := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(emptyPath, []byte(`{}`), 0o600))
	r = NewFileSource(emptyPath).Load(ctx)
	require.Equal(t, StatusEmpty, r.Status)
	require.False(t, r.Status.Degraded())

	r = NewFileSource(filepath.Join(dir, "missing.json")).Load(ctx)
	require.Equal(t, StatusUnavailable, r.Status)
	require.True(t, errors.Is(r.Err, ErrSourceUnavailable))

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{`), 0o600))
	r = NewFileSource(badPath).Load(ctx)
	require.Equal(t, StatusMalformed, r.Status)
	require.True(t, errors.Is(r.Err, ErrMalformedSource))
}

func TestMinioSourceLoad(t *testing.T) {
	s := &MinioSource{bucket: "faq", key: "faq.json", format: FormatJSON}

	s.fetch = func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(`{"вопрос": "ответ"}`)), nil
	}
	r := s.Load(context.Background())
	require.Equal(t, StatusOK, r.Status)
	require.Len(t, r.Entries, 1)

	s.fetch = func(context.Context) (io.ReadCloser, error) {
		return nil, errors.New("connection refused")
	}
	r = s.Load(context.Background())
	require.Equal(t, StatusUnavailable, r.Status)

	s.fetch = func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(`oops`)), nil
	}
	r = s.Load(context.Background())
	require.Equal(t, StatusMalformed, r.Status)
}

type flakySource struct {
	results []LoadResult
	calls   int
}

func (s *flakySource) Load(context.Context) LoadResult {
	r := s.results[s.calls%len(s.results)]
	s.calls++
	return r
}

func TestCachedSource(t *testing.T) {
	ok := LoadResult{Status: StatusOK, Entries: []Entry{{Question: "q", Answer: "a"}}}
	bad := LoadResult{Status: StatusUnavailable, Err: ErrSourceUnavailable}

	upstream := &flakySource{results: []LoadResult{bad, ok, bad}}
	cached, err := NewCachedSource(upstream, time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }
	ctx := context.Background()

	// failures are not cached
	require.Equal(t, StatusUnavailable, cached.Load(ctx).Status)
	require.Equal(t, StatusOK, cached.Load(ctx).Status)
	require.Equal(t, 2, upstream.calls)

	// served from cache
	require.Equal(t, StatusOK, cached.Load(ctx).Status)
	require.Equal(t, 2, upstream.calls)

	now = now.Add(2 * time.Minute)
	require.Equal(t, StatusUnavailable, cached.Load(ctx).Status)
	require.Equal(t, 3, upstream.calls)

	_, err = NewCachedSource(nil, time.Minute)
	require.Error(t, err)
	_, err = NewCachedSource(upstream, 0)
	require.Error(t, err)
}

func TestNewSourceFromURI(t *testing.T) {
	src, err := NewSourceFromURI("data/faq.json", nil)
	require.NoError(t, err)
	require.Equal(t, "data/faq.json", src.(*FileSource).Path())

	src, err = NewSourceFromURI("file:///etc/faq.yml", nil)
	require.NoError(t, err)
	require.Equal(t, "/etc/faq.yml", src.(*FileSource).Path())
	require.Equal(t, FormatYAML, src.(*FileSource).format)

	src, err = NewSourceFromURI("s3://bucket/path/faq.yml", &MinioConfig{Endpoint: "localhost:9000"})
	require.NoError(t, err)
	ms := src.(*MinioSource)
	require.Equal(t, "bucket", ms.bucket)
	require.Equal(t, "path/faq.yml", ms.key)
	require.Equal(t, FormatYAML, ms.format)

	for _, uri := range []string{"", "s3://bucket", "s3:///key"} {
		_, err = NewSourceFromURI(uri, &MinioConfig{Endpoint: "localhost:9000"})
		require.Error(t, err, uri)
	}

	_, err = NewSourceFromURI("s3://bucket/key.json", nil)
	require.Error(t, err)
}
