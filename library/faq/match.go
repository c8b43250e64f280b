package faq

// Entry is one canonical question with its answer
type Entry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Match is the best candidate found for a query
type Match struct {
	// Found is false when no candidate scored above zero
	Found bool
	Entry Entry
	Score float64
}

// Scored is a candidate question with its score
type Scored struct {
	Entry Entry
	Score float64
}

// Matcher scores queries against faq entries
type Matcher struct {
	match MatchFunc
}

// MatcherOption configures Matcher
type MatcherOption func(*Matcher)

// WithMatchFunc replaces the token matching policy, default is SubstringMatch
func WithMatchFunc(fn MatchFunc) MatcherOption {
	return func(m *Matcher) {
		if fn != nil {
			m.match = fn
		}
	}
}

// NewMatcher create new matcher
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{match: SubstringMatch}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

var defaultMatcher = NewMatcher()

// BestMatch finds the best entry for query with the default matcher
func BestMatch(query string, entries []Entry) Match {
	return defaultMatcher.BestMatch(query, entries)
}

// Rank scores every entry for query with the default matcher
func Rank(query string, entries []Entry) []Scored {
	return defaultMatcher.Rank(query, entries)
}

// BestMatch returns the entry with the strictly highest score.
//
// On ties the entry that comes first in entries wins.
// An entry scoring zero is never selected.
func (m *Matcher) BestMatch(query string, entries []Entry) Match {
	var best Match
	qtokens := Normalize(query)
	if len(qtokens) == 0 {
		return best
	}

	for _, e := range entries {
		score := similarity(qtokens, Normalize(e.Question), m.match)
		if score > best.Score {
			best = Match{
				Found: true,
				Entry: e,
				Score: score,
			}
		}
	}

	return best
}

// Rank returns the score of every entry, in the same order as entries
func (m *Matcher) Rank(query string, entries []Entry) []Scored {
	qtokens := Normalize(query)
	scored := make([]Scored, 0, len(entries))
	for _, e := range entries {
		scored = append(scored, Scored{
			Entry: e,
			Score: similarity(qtokens, Normalize(e.Question), m.match),
		})
	}

	return scored
}
