package dao

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-support-bot/internal/support/model"
)

const (
	// DefaultRatingsFile where the csv store appends ratings
	DefaultRatingsFile = "data/ratings.csv"

	csvTimeLayout = time.DateTime
)

var (
	_ RatingStore = new(CSVRatingStore)
	_ RatingStore = new(SQLRatingStore)

	csvHeader       = []string{"user_id", "timestamp", "rating"}
	regexpTableName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)
)

// CSVRatingStore appends ratings to a csv file with header
// `user_id,timestamp,rating`
type CSVRatingStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVRatingStore new csv store, empty path means DefaultRatingsFile
func NewCSVRatingStore(path string) *CSVRatingStore {
	if path == "" {
		path = DefaultRatingsFile
	}

	return &CSVRatingStore{path: path}
}

func (s *CSVRatingStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "stat %q", s.path)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create ratings dir")
	}

	fp, err := os.Create(s.path)
	if err != nil {
		return errors.Wrapf(err, "create %q", s.path)
	}
	defer fp.Close() // nolint: errcheck

	w := csv.NewWriter(fp)
	if err = w.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "flush header")
	}

	return nil
}

// Save appends one row
func (s *CSVRatingStore) Save(_ context.Context, rating model.Rating) error {
	if !rating.Valid() {
		return errors.Errorf("invalid rating %d", rating.Rating)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return errors.WithStack(err)
	}

	fp, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %q", s.path)
	}
	defer fp.Close() // nolint: errcheck

	w := csv.NewWriter(fp)
	if err = w.Write([]string{
		strconv.FormatInt(rating.UserID, 10),
		rating.CreatedAt.Format(csvTimeLayout),
		strconv.Itoa(rating.Rating),
	}); err != nil {
		return errors.Wrap(err, "write rating")
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "flush rating")
	}

	return nil
}

// Stats counts rows by rating, rows that are not a valid star are skipped
func (s *CSVRatingStore) Stats(_ context.Context) (*model.RatingStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.NewRatingStats()
	fp, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return nil, errors.Wrapf(err, "open %q", s.path)
	}
	defer fp.Close() // nolint: errcheck

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	for line := 0; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read ratings")
		}
		if line == 0 || len(row) < len(csvHeader) {
			continue
		}

		if n, err := strconv.Atoi(row[2]); err == nil {
			st.Add(n, 1)
		}
	}

	return st, nil
}

// SQLRatingStore keeps ratings in a sql table
type SQLRatingStore struct {
	db        *sql.DB
	tableName string
}

// NewSQLRatingStore new sql store, creates the table if needed
func NewSQLRatingStore(db *sql.DB, tableName string) (*SQLRatingStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if tableName == "" {
		tableName = "ratings"
	}
	if !regexpTableName.MatchString(tableName) {
		return nil, errors.Errorf("invalid table name: %s", tableName)
	}

	s := &SQLRatingStore{db: db, tableName: tableName}
	stmt := `
CREATE TABLE IF NOT EXISTS ` + s.tableName + ` (
  user_id BIGINT NOT NULL,
  rating INTEGER NOT NULL,
  created_at TIMESTAMP NOT NULL
)`
	if _, err := db.Exec(stmt); err != nil {
		return nil, errors.Wrap(err, "create ratings table")
	}

	return s, nil
}

// Save inserts one rating
func (s *SQLRatingStore) Save(ctx context.Context, rating model.Rating) error {
	if !rating.Valid() {
		return errors.Errorf("invalid rating %d", rating.Rating)
	}

	stmt := `INSERT INTO ` + s.tableName + ` (user_id, rating, created_at) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, stmt,
		rating.UserID, rating.Rating, rating.CreatedAt.UTC()); err != nil {
		return errors.Wrap(err, "insert rating")
	}

	return nil
}

// Stats groups ratings by star
func (s *SQLRatingStore) Stats(ctx context.Context) (*model.RatingStats, error) {
	stmt := `SELECT rating, COUNT(*) FROM ` + s.tableName + ` GROUP BY rating`
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errors.Wrap(err, "query rating stats")
	}
	defer rows.Close() // nolint: errcheck

	st := model.NewRatingStats()
	for rows.Next() {
		var rating, n int
		if err = rows.Scan(&rating, &n); err != nil {
			return nil, errors.Wrap(err, "scan rating stats")
		}
		st.Add(rating, n)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rating stats")
	}

	return st, nil
}
