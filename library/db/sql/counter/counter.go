// Package counter implements named monotonic counters on top of database/sql.
//
// The statements use `$n` placeholders and `ON CONFLICT` upserts,
// which both sqlite3 and postgres understand.
package counter

import (
	"context"
	"database/sql"
	"regexp"

	errors "github.com/Laisky/errors/v2"
)

var (
	_ Interface = new(Counter)

	regexpName      = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)
	regexpTableName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)
)

// Interface is a named counter
type Interface interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Counter stores counters in a `(name, value)` table
type Counter struct {
	opt *option
	db  *sql.DB
}

type option struct {
	tableName string
}

// Option is a function that configures the counter
type Option func(*option) error

func applyOpts(opts ...Option) (*option, error) {
	// fill default
	o := &option{
		tableName: "counters",
	}

	// apply opts
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return o, nil
}

// WithTableName is a option to set table name
func WithTableName(tableName string) Option {
	return func(o *option) error {
		if !regexpTableName.MatchString(tableName) {
			return errors.Errorf("invalid table name: %s", tableName)
		}
		o.tableName = tableName
		return nil
	}
}

// NewCounter create a new counter and its table
func NewCounter(db *sql.DB, opts ...Option) (*Counter, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	opt, err := applyOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "apply opts")
	}

	c := &Counter{
		opt: opt,
		db:  db,
	}

	if err := c.setup(); err != nil {
		return nil, errors.Wrap(err, "setup counter")
	}

	return c, nil
}

func (c *Counter) setup() error {
	stmt := `
CREATE TABLE IF NOT EXISTS ` + c.opt.tableName + ` (
  name TEXT PRIMARY KEY,
  value BIGINT NOT NULL
)`

	if _, err := c.db.Exec(stmt); err != nil {
		return errors.Wrap(err, "create counter table")
	}

	return nil
}

func validName(name string) error {
	if !regexpName.MatchString(name) {
		return errors.Errorf("invalid counter name: %s", name)
	}

	return nil
}

// Next increments the counter and returns the new value.
// A counter that does not exist yet starts at 1.
func (c *Counter) Next(ctx context.Context, name string) (val int64, err error) {
	if err = validName(name); err != nil {
		return 0, errors.WithStack(err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	upsert := `
INSERT INTO ` + c.opt.tableName + ` (name, value)
VALUES ($1, 1)
ON CONFLICT(name)
DO UPDATE SET value = ` + c.opt.tableName + `.value + 1`
	if _, err = tx.ExecContext(ctx, upsert, name); err != nil {
		return 0, errors.Wrap(err, "increase counter")
	}

	query := `SELECT value FROM ` + c.opt.tableName + ` WHERE name = $1`
	if err = tx.QueryRowContext(ctx, query, name).Scan(&val); err != nil {
		return 0, errors.Wrap(err, "read counter")
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit tx")
	}

	return val, nil
}
