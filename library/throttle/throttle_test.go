package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewUserThrottle(t *testing.T) {
	_, err := NewUserThrottle(nil)
	require.Error(t, err)
	_, err = NewUserThrottle(&UserThrottleCfg{TotalNPerSec: 0, TotalBurst: 1, EachUserNPerSec: 1, EachUserBurst: 1})
	require.Error(t, err)
	_, err = NewUserThrottle(&UserThrottleCfg{TotalNPerSec: 5, TotalBurst: 1, EachUserNPerSec: 1, EachUserBurst: 1})
	require.Error(t, err)
}

func TestUserThrottleAllow(t *testing.T) {
	th, err := NewUserThrottle(&UserThrottleCfg{
		TotalNPerSec: 3, TotalBurst: 3,
		EachUserNPerSec: 1, EachUserBurst: 2,
	})
	require.NoError(t, err)
	now := time.Now()

	require.True(t, th.allowAt(1, now))
	require.True(t, th.allowAt(1, now))
	require.False(t, th.allowAt(1, now), "user burst exhausted")

	// the rejected message did not consume the shared bucket
	require.True(t, th.allowAt(2, now))
	require.False(t, th.allowAt(3, now), "total burst exhausted")

	later := now.Add(time.Second)
	require.True(t, th.allowAt(1, later))
}
