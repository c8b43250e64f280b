package faq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

// Status is the outcome of loading a faq source
type Status string

const (
	// StatusNotLoaded the source was not consulted at all
	StatusNotLoaded Status = "not_loaded"
	// StatusOK the source was loaded and has entries
	StatusOK Status = "ok"
	// StatusEmpty the source was loaded but has no entries
	StatusEmpty Status = "empty"
	// StatusUnavailable the source is missing or unreadable
	StatusUnavailable Status = "unavailable"
	// StatusMalformed the source can not be parsed
	StatusMalformed Status = "malformed"
)

// Degraded is true when the source failed to load
func (s Status) Degraded() bool {
	return s == StatusUnavailable || s == StatusMalformed
}

// LoadResult is what a Source returns, it never carries a fatal error.
// Err is only a diagnostic for degraded statuses.
type LoadResult struct {
	Entries []Entry
	Status  Status
	Err     error
}

func loaded(entries []Entry) LoadResult {
	if len(entries) == 0 {
		return LoadResult{Status: StatusEmpty}
	}

	return LoadResult{Entries: entries, Status: StatusOK}
}

func unavailable(err error) LoadResult {
	return LoadResult{
		Status: StatusUnavailable,
		Err:    errors.Wrap(ErrSourceUnavailable, err.Error()),
	}
}

func malformed(err error) LoadResult {
	return LoadResult{
		Status: StatusMalformed,
		Err:    errors.Wrap(ErrMalformedSource, err.Error()),
	}
}

// Source loads the current faq mapping
type Source interface {
	Load(ctx context.Context) LoadResult
}

// Format is the document format of a faq source
type Format string

const (
	// FormatJSON `{"question": "answer", ...}`
	FormatJSON Format = "json"
	// FormatYAML `question: answer` mapping
	FormatYAML Format = "yaml"
)

// FormatFromPath detects format by file extension, default is json
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a question→answer document, keeping document order.
//
// Duplicate questions keep the position of the first occurrence
// and the answer of the last one.
func Parse(raw []byte, format Format) ([]Entry, error) {
	switch format {
	case FormatYAML:
		return parseYAML(raw)
	case FormatJSON:
		return parseJSON(raw)
	default:
		return nil, errors.Errorf("unknown format %q", format)
	}
}

type entryList struct {
	entries []Entry
	idx     map[string]int
}

func (l *entryList) add(question, answer string) {
	if l.idx == nil {
		l.idx = make(map[string]int)
	}

	if i, ok := l.idx[question]; ok {
		l.entries[i].Answer = answer
		return
	}

	l.idx[question] = len(l.entries)
	l.entries = append(l.entries, Entry{Question: question, Answer: answer})
}

func parseJSON(raw []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "read json document")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Errorf("json document must be an object, got %v", tok)
	}

	var list entryList
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "read json key")
		}
		question, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("unexpected json key %v", tok)
		}

		var value json.RawMessage
		if err = dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "read answer of %q", question)
		}
		// null would decode into an empty answer
		if len(value) == 0 || value[0] != '"' {
			return nil, errors.Errorf("answer of %q must be a string, got %s", question, value)
		}
		var answer string
		if err = json.Unmarshal(value, &answer); err != nil {
			return nil, errors.Wrapf(err, "answer of %q must be a string", question)
		}

		list.add(question, answer)
	}

	if _, err = dec.Token(); err != nil {
		return nil, errors.Wrap(err, "read json object end")
	}
	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after json object")
	}

	return list.entries, nil
}

const nullTag = "!!null"

func parseYAML(raw []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, errors.Wrap(err, "decode yaml document")
	}

	// empty document
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errors.Errorf("yaml document must be a mapping, line %d", doc.Line)
	}

	var list entryList
	for i := 0; i+1 < len(doc.Content); i += 2 {
		k, v := doc.Content[i], doc.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("question and answer must be scalars, line %d", k.Line)
		}
		if k.ShortTag() == nullTag || v.ShortTag() == nullTag {
			return nil, errors.Errorf("question and answer must not be null, line %d", k.Line)
		}

		list.add(k.Value, v.Value)
	}

	return list.entries, nil
}

// FileSource reads the faq from a local json/yaml file on every Load
type FileSource struct {
	path   string
	format Format
}

// NewFileSource create new file source, format is detected by extension
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:   path,
		format: FormatFromPath(path),
	}
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Load reads and parses the file
func (s *FileSource) Load(_ context.Context) LoadResult {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return unavailable(errors.Wrapf(err, "read %s", s.path))
	}

	entries, err := Parse(raw, s.format)
	if err != nil {
		return malformed(errors.Wrapf(err, "parse %s", s.path))
	}

	return loaded(entries)
}

// StaticSource is an in-memory source
type StaticSource []Entry

// Load returns a copy of the entries
func (s StaticSource) Load(_ context.Context) LoadResult {
	entries := make([]Entry, len(s))
	copy(entries, s)
	return loaded(entries)
}

// CachedSource keeps the last successful load for ttl.
// Degraded loads are never cached.
type CachedSource struct {
	mu       sync.Mutex
	upstream Source
	ttl      time.Duration
	now      func() time.Time

	cached   LoadResult
	expireAt time.Time
}

// NewCachedSource wraps upstream with a ttl cache
func NewCachedSource(upstream Source, ttl time.Duration) (*CachedSource, error) {
	if upstream == nil {
		return nil, errors.New("upstream source is nil")
	}
	if ttl <= 0 {
		return nil, errors.Errorf("ttl must be greater than 0: %s", ttl)
	}

	return &CachedSource{
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Load returns the cached result or loads from upstream
func (s *CachedSource) Load(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.expireAt.IsZero() && now.Before(s.expireAt) {
		return s.cached
	}

	r := s.upstream.Load(ctx)
	if r.Status.Degraded() {
		s.expireAt = time.Time{}
		return r
	}

	s.cached = r
	s.expireAt = now.Add(s.ttl)
	return r
}

// NewSourceFromURI builds a source from `file://path`, a bare path or `s3://bucket/key`.
// minioCfg is required only for s3 uris.
func NewSourceFromURI(uri string, minioCfg *MinioConfig) (Source, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return nil, errors.New("faq source is empty")
	case strings.HasPrefix(uri, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, errors.Errorf("invalid s3 uri %q, should be s3://bucket/key", uri)
		}
		if minioCfg == nil {
			return nil, errors.Errorf("minio config is required for %q", uri)
		}

		return NewMinioSource(*minioCfg, bucket, key)
	case strings.HasPrefix(uri, "file://"):
		return NewFileSource(strings.TrimPrefix(uri, "file://")), nil
	default:
		return NewFileSource(uri), nil
	}
}
