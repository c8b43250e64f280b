// Package throttle limits how fast telegram users can talk to the bot.
package throttle

import (
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"golang.org/x/time/rate"
)

// UserThrottleCfg configuration for UserThrottle
type UserThrottleCfg struct {
	TotalNPerSec, TotalBurst       int
	EachUserNPerSec, EachUserBurst int
}

// UserThrottle throttle for inbound telegram updates,
// one bucket for the whole bot and one for each user
type UserThrottle struct {
	sync.Mutex
	cfg           *UserThrottleCfg
	totalThrottle *rate.Limiter
	usersThrottle *sync.Map
}

// NewUserThrottle create new UserThrottle
func NewUserThrottle(cfg *UserThrottleCfg) (*UserThrottle, error) {
	if cfg == nil {
		return nil, errors.New("throttle config is nil")
	}
	if cfg.TotalNPerSec <= 0 || cfg.EachUserNPerSec <= 0 {
		return nil, errors.New("NPerSec must bigger than 0")
	}
	if cfg.TotalBurst < cfg.TotalNPerSec || cfg.EachUserBurst < cfg.EachUserNPerSec {
		return nil, errors.New("burst must bigger than NPerSec")
	}

	return &UserThrottle{
		cfg:           cfg,
		totalThrottle: rate.NewLimiter(rate.Limit(cfg.TotalNPerSec), cfg.TotalBurst),
		usersThrottle: new(sync.Map),
	}, nil
}

// Allow is allow user to send one more update now
func (t *UserThrottle) Allow(uid int64) bool {
	return t.allowAt(uid, time.Now())
}

func (t *UserThrottle) allowAt(uid int64, now time.Time) bool {
	var ut *rate.Limiter
	if uti, ok := t.usersThrottle.Load(uid); ok {
		ut = uti.(*rate.Limiter)
	} else {
		t.Lock()
		if uti, ok := t.usersThrottle.Load(uid); ok {
			ut = uti.(*rate.Limiter)
		} else {
			ut = rate.NewLimiter(rate.Limit(t.cfg.EachUserNPerSec), t.cfg.EachUserBurst)
			t.usersThrottle.Store(uid, ut)
		}
		t.Unlock()
	}

	// a user over its own limit must not drain the shared bucket
	return ut.AllowN(now, 1) && t.totalThrottle.AllowN(now, 1)
}
