package redis

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/Laisky/errors/v2"
	gredis "github.com/Laisky/go-redis/v2"
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	cli *redis.Client
	db  *gredis.Utils
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	rdb := redis.NewClient(opt)
	return &DB{
		cli: rdb,
		db:  gredis.NewRedisUtils(rdb),
	}
}

// Close closes the underlying client
func (db *DB) Close() error {
	if db.cli == nil {
		return nil
	}

	return db.cli.Close()
}

// NextTicket increases the ticket sequence, the first ticket is 1
func (db *DB) NextTicket(ctx context.Context) (int64, error) {
	n, err := db.cli.Incr(ctx, KeyTickets).Result()
	if err != nil {
		return 0, errors.Wrap(err, "incr tickets")
	}

	return n, nil
}

// EscalationKey returns the per-day escalation queue
func EscalationKey(at time.Time) string {
	return KeyPrefixEscalations + at.UTC().Format(time.DateOnly)
}

// PushEscalation appends an escalation record as json to the queue of its day.
//
// escalation queues are audit records, they are never trimmed.
func (db *DB) PushEscalation(ctx context.Context, at time.Time, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal escalation")
	}

	if err = db.db.RPush(ctx, EscalationKey(at), []interface{}{raw},
		db.db.WithMaxLength(math.MaxInt64),
	); err != nil {
		return errors.Wrap(err, "rpush")
	}

	return nil
}

// Escalations returns the raw json records queued at the day of `at`
func (db *DB) Escalations(ctx context.Context, at time.Time) ([]string, error) {
	records, err := db.cli.LRange(ctx, EscalationKey(at), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "lrange escalations")
	}

	return records, nil
}
