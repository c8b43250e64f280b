package dao

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/laisky-support-bot/internal/support/model"
)

// EscalationsColName mongo collection of escalations
const EscalationsColName = "escalations"

var (
	_ EscalationLog = new(MongoEscalationLog)
	_ EscalationLog = new(RedisEscalationLog)
	_ EscalationLog = NopEscalationLog{}
)

type escalationInserter interface {
	InsertOne(ctx context.Context, document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoEscalationLog inserts escalations into a mongo collection
type MongoEscalationLog struct {
	col escalationInserter
}

// NewMongoEscalationLog new mongo log, col is usually `db.GetCol(EscalationsColName)`
func NewMongoEscalationLog(col escalationInserter) (*MongoEscalationLog, error) {
	if col == nil {
		return nil, errors.New("collection is nil")
	}

	return &MongoEscalationLog{col: col}, nil
}

// Record insert one escalation
func (l *MongoEscalationLog) Record(ctx context.Context, esc *model.Escalation) error {
	if esc == nil {
		return errors.New("escalation is nil")
	}

	if _, err := l.col.InsertOne(ctx, esc); err != nil {
		return errors.Wrapf(err, "insert escalation %s", esc.ID)
	}

	return nil
}

type escalationPusher interface {
	PushEscalation(ctx context.Context, at time.Time, record any) error
}

// RedisEscalationLog pushes escalations to a per-day redis list
type RedisEscalationLog struct {
	db escalationPusher
}

// NewRedisEscalationLog new redis log
func NewRedisEscalationLog(db escalationPusher) (*RedisEscalationLog, error) {
	if db == nil {
		return nil, errors.New("redis db is nil")
	}

	return &RedisEscalationLog{db: db}, nil
}

// Record rpush one escalation to the list of its day
func (l *RedisEscalationLog) Record(ctx context.Context, esc *model.Escalation) error {
	if esc == nil {
		return errors.New("escalation is nil")
	}

	if err := l.db.PushEscalation(ctx, esc.CreatedAt, esc); err != nil {
		return errors.Wrapf(err, "push escalation %s", esc.ID)
	}

	return nil
}
