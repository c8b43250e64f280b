package service

import (
	"sync"
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	tb "gopkg.in/telebot.v3"
)

// DefaultSessionTTL how long a conversation state survives without messages
const DefaultSessionTTL = 30 * time.Minute

const (
	userWaitForProblem      = "waiting_for_problem"
	userWaitForConfirmation = "waiting_for_confirmation"
)

const dataUserMessage = "user_message"

// userStat is never mutated after being stored
type userStat struct {
	user  *tb.User
	state string
	lastT time.Time
	data  map[string]string
}

type sessionStore struct {
	ttl   time.Duration
	stats *sync.Map
	now   func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &sessionStore{
		ttl:   ttl,
		stats: new(sync.Map),
		now:   gutils.Clock.GetUTCNow,
	}
}

func (s *sessionStore) expired(us *userStat) bool {
	return s.now().Sub(us.lastT) > s.ttl
}

func (s *sessionStore) get(uid int64) (*userStat, bool) {
	raw, ok := s.stats.Load(uid)
	if !ok {
		return nil, false
	}

	us := raw.(*userStat)
	if s.expired(us) {
		s.stats.CompareAndDelete(uid, raw)
		return nil, false
	}

	return us, true
}

func (s *sessionStore) state(uid int64) string {
	if us, ok := s.get(uid); ok {
		return us.state
	}

	return ""
}

// update replaces the user's session with a copy changed by mutate.
//
// Handlers run concurrently, the swap is retried until no other
// update of the same user slipped in between.
func (s *sessionStore) update(user *tb.User, mutate func(us *userStat)) {
	for {
		raw, loaded := s.stats.Load(user.ID)
		us := &userStat{user: user, lastT: s.now(), data: map[string]string{}}
		if loaded {
			if old := raw.(*userStat); !s.expired(old) {
				us.state = old.state
				for k, v := range old.data {
					us.data[k] = v
				}
			}
		}
		mutate(us)

		if !loaded {
			if _, exists := s.stats.LoadOrStore(user.ID, us); !exists {
				return
			}
			continue
		}
		if s.stats.CompareAndSwap(user.ID, raw, us) {
			return
		}
	}
}

// setState moves the user to state and keeps its data
func (s *sessionStore) setState(user *tb.User, state string) {
	s.update(user, func(us *userStat) {
		us.state = state
	})
}

// setData stores one value, a user without state stays without state
func (s *sessionStore) setData(user *tb.User, key, val string) {
	s.update(user, func(us *userStat) {
		us.data[key] = val
	})
}

func (s *sessionStore) data(uid int64, key string) (string, bool) {
	us, ok := s.get(uid)
	if !ok {
		return "", false
	}

	v, ok := us.data[key]
	return v, ok
}

func (s *sessionStore) clear(uid int64) {
	s.stats.Delete(uid)
}

// gc drops expired sessions, returns how many were dropped
func (s *sessionStore) gc() (n int) {
	s.stats.Range(func(key, value any) bool {
		if s.expired(value.(*userStat)) {
			if s.stats.CompareAndDelete(key, value) {
				n++
			}
		}
		return true
	})

	return n
}
