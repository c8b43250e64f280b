package dao

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-support-bot/library/db/sql/counter"
)

// DefaultTicketFile where the file counter keeps the last ticket
const DefaultTicketFile = "data/ticket_counter.txt"

const ticketCounterName = "tickets"

var (
	_ TicketCounter = new(FileTicketCounter)
	_ TicketCounter = new(SQLTicketCounter)
	_ TicketCounter = new(RedisTicketCounter)
)

// FileTicketCounter keeps the last issued ticket as plain text
type FileTicketCounter struct {
	mu   sync.Mutex
	path string
}

// NewFileTicketCounter new file counter, empty path means DefaultTicketFile
func NewFileTicketCounter(path string) *FileTicketCounter {
	if path == "" {
		path = DefaultTicketFile
	}

	return &FileTicketCounter{path: path}
}

// Next reads the last ticket, increases it and writes it back.
// A missing or blank file counts as 0.
func (c *FileTicketCounter) Next(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var last int64
	raw, err := os.ReadFile(c.path)
	switch {
	case err == nil:
		if s := strings.TrimSpace(string(raw)); s != "" {
			if last, err = strconv.ParseInt(s, 10, 64); err != nil {
				return 0, errors.Wrapf(err, "parse ticket counter %q", c.path)
			}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return 0, errors.Wrapf(err, "read ticket counter %q", c.path)
	}

	next := last + 1
	if err = os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return 0, errors.Wrap(err, "create ticket counter dir")
	}
	if err = os.WriteFile(c.path, []byte(strconv.FormatInt(next, 10)), 0o644); err != nil {
		return 0, errors.Wrapf(err, "write ticket counter %q", c.path)
	}

	return next, nil
}

// SQLTicketCounter stores tickets in the counters table
type SQLTicketCounter struct {
	counter counter.Interface
}

// NewSQLTicketCounter new sql counter
func NewSQLTicketCounter(c counter.Interface) (*SQLTicketCounter, error) {
	if c == nil {
		return nil, errors.New("counter is nil")
	}

	return &SQLTicketCounter{counter: c}, nil
}

// Next increases the tickets row
func (c *SQLTicketCounter) Next(ctx context.Context) (int64, error) {
	n, err := c.counter.Next(ctx, ticketCounterName)
	if err != nil {
		return 0, errors.Wrap(err, "next sql ticket")
	}

	return n, nil
}

type ticketIncr interface {
	NextTicket(ctx context.Context) (int64, error)
}

// RedisTicketCounter INCR support/tickets
type RedisTicketCounter struct {
	db ticketIncr
}

// NewRedisTicketCounter new redis counter
func NewRedisTicketCounter(db ticketIncr) (*RedisTicketCounter, error) {
	if db == nil {
		return nil, errors.New("redis db is nil")
	}

	return &RedisTicketCounter{db: db}, nil
}

// Next increases the redis sequence
func (c *RedisTicketCounter) Next(ctx context.Context) (int64, error) {
	n, err := c.db.NextTicket(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "next redis ticket")
	}

	return n, nil
}
