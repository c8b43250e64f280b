package faq

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingSource struct {
	Source
	n atomic.Int32
}

func (s *countingSource) Load(ctx context.Context) LoadResult {
	s.n.Add(1)
	return s.Source.Load(ctx)
}

func newTestResolver(t *testing.T, src Source, opts ...ResolverOption) *Resolver {
	t.Helper()
	r, err := NewResolver(src, opts...)
	require.NoError(t, err)
	return r
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	src := StaticSource{
		{Question: "как установить трекер", Answer: "Инструкция по установке трекера..."},
		{Question: "пустой ответ", Answer: ""},
	}
	r := newTestResolver(t, src)

	t.Run("exact question", func(t *testing.T) {
		got := r.Resolve(ctx, "как установить трекер")
		require.True(t, got.Found)
		require.Equal(t, "Инструкция по установке трекера...", got.Answer)
		require.Equal(t, 1.0, got.Score)
		require.Equal(t, StatusOK, got.SourceStatus)
	})

	t.Run("score exactly at threshold is rejected", func(t *testing.T) {
		got := r.Resolve(ctx, "трекер не устанавливается как быть")
		require.False(t, got.Found)
		require.Empty(t, got.Answer)
		require.InDelta(t, 0.5, got.Score, 1e-9)
	})

	t.Run("one of three tokens", func(t *testing.T) {
		got := r.Resolve(ctx, "трекер устанавливается быть")
		require.False(t, got.Found)
		require.InDelta(t, 1.0/3, got.Score, 1e-9)
	})

	t.Run("plural form still matches", func(t *testing.T) {
		got := r.Resolve(ctx, "трекеры установить")
		require.True(t, got.Found)
	})

	t.Run("empty answer is still found", func(t *testing.T) {
		got := r.Resolve(ctx, "пустой ответ")
		require.True(t, got.Found)
		require.Empty(t, got.Answer)
	})
}

func TestResolveThresholdBoundary(t *testing.T) {
	ctx := context.Background()
	src := StaticSource{{Question: "установить трекер", Answer: "ok"}}

	// query scores exactly 0.5
	query := "трекер anydesk"
	r := newTestResolver(t, src)
	require.False(t, r.Resolve(ctx, query).Found)

	r = newTestResolver(t, src, WithThreshold(0.49999999))
	require.True(t, r.Resolve(ctx, query).Found)

	// 2 of 3 tokens
	r = newTestResolver(t, src)
	require.True(t, r.Resolve(ctx, "трекер установить anydesk").Found)
}

func TestResolveEmptyQuerySkipsSource(t *testing.T) {
	src := &countingSource{Source: StaticSource{{Question: "как установить трекер", Answer: "a"}}}
	r := newTestResolver(t, src)

	for _, q := range []string{"", "   ", "\n\t"} {
		got := r.Resolve(context.Background(), q)
		require.False(t, got.Found)
		require.Equal(t, StatusNotLoaded, got.SourceStatus)
	}
	require.Zero(t, src.n.Load())
}

func TestResolveEmptyFAQ(t *testing.T) {
	r := newTestResolver(t, StaticSource{})
	got := r.Resolve(context.Background(), "как установить трекер")
	require.False(t, got.Found)
	require.Equal(t, StatusEmpty, got.SourceStatus)
}

func TestResolveDegradedSource(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		r := newTestResolver(t, NewFileSource(filepath.Join(dir, "nope.json")))
		got := r.Resolve(ctx, "как установить трекер")
		require.False(t, got.Found)
		require.Equal(t, StatusUnavailable, got.SourceStatus)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "faq.json")
		require.NoError(t, os.WriteFile(path, []byte(`["not", "a", "mapping"]`), 0o600))
		r := newTestResolver(t, NewFileSource(path))
		got := r.Resolve(ctx, "как установить трекер")
		require.False(t, got.Found)
		require.Equal(t, StatusMalformed, got.SourceStatus)
	})

	t.Run("null answer", func(t *testing.T) {
		path := filepath.Join(dir, "null.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"как установить трекер": null}`), 0o600))
		r := newTestResolver(t, NewFileSource(path))
		got := r.Resolve(ctx, "как установить трекер")
		require.False(t, got.Found)
		require.Empty(t, got.Answer)
		require.Equal(t, StatusMalformed, got.SourceStatus)
	})
}

func TestResolveConcurrent(t *testing.T) {
	r := newTestResolver(t, StaticSource{{Question: "как установить трекер", Answer: "a"}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got := r.Resolve(context.Background(), "как установить трекер")
				if !got.Found || got.Answer != "a" {
					t.Errorf("unexpected result %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewResolverOptions(t *testing.T) {
	_, err := NewResolver(nil)
	require.Error(t, err)

	_, err = NewResolver(StaticSource{}, WithThreshold(1))
	require.Error(t, err)
	_, err = NewResolver(StaticSource{}, WithThreshold(-0.1))
	require.Error(t, err)

	r, err := NewResolver(StaticSource{}, WithThreshold(0))
	require.NoError(t, err)
	require.Zero(t, r.Threshold())
}
