package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*DB, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	db := NewDB(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = db.Close() })
	return db, srv
}

func TestNextTicket(t *testing.T) {
	ctx := context.Background()
	db, srv := newTestDB(t)

	for i := int64(1); i <= 3; i++ {
		n, err := db.NextTicket(ctx)
		require.NoError(t, err)
		require.Equal(t, i, n)
	}

	v, err := srv.Get("support/tickets")
	require.NoError(t, err)
	require.Equal(t, "3", v)

	srv.SetError("ERR out of tickets")
	_, err = db.NextTicket(ctx)
	require.ErrorContains(t, err, "incr tickets")
}

type escalationRecord struct {
	ID     string `json:"id"`
	UserID int64  `json:"user_id"`
}

func TestPushEscalation(t *testing.T) {
	ctx := context.Background()
	db, srv := newTestDB(t)

	at := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("EET", 2*3600))
	require.NoError(t, db.PushEscalation(ctx, at, &escalationRecord{ID: "e1", UserID: 42}))
	require.True(t, srv.Exists("support/escalations/2026-03-01"))

	records, err := db.Escalations(ctx, at)
	require.NoError(t, err)
	require.Len(t, records, 1)

	var got escalationRecord
	require.NoError(t, json.Unmarshal([]byte(records[0]), &got))
	require.Equal(t, escalationRecord{ID: "e1", UserID: 42}, got)

	require.Equal(t, "support/escalations/2026-03-02", EscalationKey(at.Add(3*time.Hour)))
}

func TestPushEscalationNeverTrims(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 250; i++ {
		require.NoError(t, db.PushEscalation(ctx, at, &escalationRecord{UserID: int64(i)}))
	}

	records, err := db.Escalations(ctx, at)
	require.NoError(t, err)
	require.Len(t, records, 250)
}

func TestPushEscalationMarshalError(t *testing.T) {
	db, _ := newTestDB(t)
	err := db.PushEscalation(context.Background(), time.Now(), make(chan int))
	require.ErrorContains(t, err, "marshal escalation")
}
