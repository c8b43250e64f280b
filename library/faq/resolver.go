// Package faq answers free-text questions by fuzzy keyword matching
// against a static question/answer mapping.
package faq

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-support-bot/library/log"
)

// DefaultThreshold a match must score strictly above this to be accepted
const DefaultThreshold = 0.5

// Result of resolving a question.
//
// Found is the only way to tell "no answer" from an empty answer text.
type Result struct {
	Found    bool
	Answer   string
	Question string
	// Score of the best candidate, reported even when it is below threshold
	Score        float64
	SourceStatus Status
}

// Resolver resolves questions to answers, safe for concurrent use
type Resolver struct {
	source    Source
	threshold float64
	matcher   *Matcher
	logger    logSDK.Logger
}

// ResolverOption configures Resolver
type ResolverOption func(*Resolver) error

// WithThreshold set acceptance threshold, must be in [0, 1)
func WithThreshold(threshold float64) ResolverOption {
	return func(r *Resolver) error {
		if threshold < 0 || threshold >= 1 {
			return errors.Errorf("threshold must be in [0, 1), got %v", threshold)
		}

		r.threshold = threshold
		return nil
	}
}

// WithMatcher set matcher
func WithMatcher(m *Matcher) ResolverOption {
	return func(r *Resolver) error {
		if m == nil {
			return errors.New("matcher is nil")
		}

		r.matcher = m
		return nil
	}
}

// WithLogger set logger for load diagnostics
func WithLogger(logger logSDK.Logger) ResolverOption {
	return func(r *Resolver) error {
		if logger == nil {
			return errors.New("logger is nil")
		}

		r.logger = logger
		return nil
	}
}

// NewResolver create new resolver
func NewResolver(source Source, opts ...ResolverOption) (*Resolver, error) {
	if source == nil {
		return nil, errors.New("source is nil")
	}

	r := &Resolver{
		source:    source,
		threshold: DefaultThreshold,
		matcher:   defaultMatcher,
		logger:    log.Logger.Named("faq"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return r, nil
}

// Threshold returns the acceptance threshold
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Resolve finds the answer for question.
//
// It never fails: an empty question, an empty or broken source,
// or a best score not above threshold all yield a result with Found=false.
func (r *Resolver) Resolve(ctx context.Context, question string) Result {
	if strings.TrimSpace(question) == "" {
		return Result{SourceStatus: StatusNotLoaded}
	}

	loaded := r.source.Load(ctx)
	if loaded.Status.Degraded() {
		r.logger.Warn("load faq source",
			zap.String("status", string(loaded.Status)),
			zap.Error(loaded.Err))
		return Result{SourceStatus: loaded.Status}
	}

	best := r.matcher.BestMatch(question, loaded.Entries)
	result := Result{
		Score:        best.Score,
		SourceStatus: loaded.Status,
	}
	if best.Found && best.Score > r.threshold {
		result.Found = true
		result.Question = best.Entry.Question
		result.Answer = best.Entry.Answer
	}

	r.logger.Debug("resolve question",
		zap.Bool("found", result.Found),
		zap.Float64("score", best.Score),
		zap.String("candidate", best.Entry.Question))
	return result
}

// Load exposes the underlying source load, used by diagnostics
func (r *Resolver) Load(ctx context.Context) LoadResult {
	return r.source.Load(ctx)
}

// Rank scores every entry of the current source for question
func (r *Resolver) Rank(ctx context.Context, question string) ([]Scored, LoadResult) {
	loaded := r.source.Load(ctx)
	return r.matcher.Rank(question, loaded.Entries), loaded
}
