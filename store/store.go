package store

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/schollz/sqlite3dump"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/model"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

// TimeLayout is how slot start times are stored. SQLite's datetime() produces
// the same layout, so stored values compare correctly against it as text.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultRetention is how long slots are kept before Prune removes them.
const DefaultRetention = 72 * time.Hour

const createTable = `CREATE TABLE IF NOT EXISTS eco (
	valid_from TEXT PRIMARY KEY,
	value_inc_vat REAL,
	intensity REAL,
	gas_value_inc_vat REAL)`

// Store is the local slot database shared by the fetch and display runs.
type Store struct {
	Path     string
	db       *sql.DB
	isClosed bool
}

// Open connects to the database at path. With create unset a missing file is
// an error, since only a fetch run can populate a new database.
func Open(ctx context.Context, path string, create bool) (*Store, error) {
	logger := utils.GetLogger(ctx)

	_, statErr := os.Stat(path)
	newDatabase := os.IsNotExist(statErr)
	if newDatabase && !create {
		return nil, errors.Errorf("database %s not found, run the store command first", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "Open sql.Open")
	}
	s := &Store{Path: path, db: db}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Open create table")
	}
	if newDatabase {
		logger.Info("created new database", zap.String("path", path))
	} else {
		logger.Info("connected to database", zap.String("path", path))
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.isClosed {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "Close")
	}
	s.isClosed = true
	return nil
}

func column(field model.Field) (string, error) {
	switch field {
	case model.FieldPrice, model.FieldCarbon, model.FieldGasPrice:
		return string(field), nil
	}
	return "", errors.Wrapf(common.ErrorInvalidValue, "unknown field %q", field)
}

// Upsert writes each rate into its field's column, leaving the other columns
// of an existing slot untouched. It returns the number of rates written.
func (s *Store) Upsert(ctx context.Context, rates []model.Rate) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "Upsert Begin")
	}

	count := 0
	for _, rate := range rates {
		col, err := column(rate.Field)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		query := fmt.Sprintf("INSERT INTO eco(valid_from, %[1]s) VALUES (?, ?) "+
			"ON CONFLICT(valid_from) DO UPDATE SET %[1]s=excluded.%[1]s", col)
		if _, err := tx.ExecContext(ctx, query, rate.ValidFrom.UTC().Format(TimeLayout), rate.Value); err != nil {
			tx.Rollback()
			return 0, errors.Wrap(err, "Upsert Exec")
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "Upsert Commit")
	}
	return count, nil
}

// Prune deletes slots that started more than age before now.
func (s *Store) Prune(ctx context.Context, now time.Time, age time.Duration) (int64, error) {
	cutoff := now.UTC().Add(-age).Format(TimeLayout)
	res, err := s.db.ExecContext(ctx, "DELETE FROM eco WHERE valid_from < ?", cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "Prune Exec")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "Prune RowsAffected")
	}
	return n, nil
}

// Upcoming returns the slots from the one in progress at now onwards that have
// field set, oldest first.
func (s *Store) Upcoming(ctx context.Context, field model.Field, now time.Time) ([]model.Row, error) {
	col, err := column(field)
	if err != nil {
		return nil, err
	}
	from := now.UTC().Add(-model.SlotDuration).Format(TimeLayout)
	query := fmt.Sprintf("SELECT valid_from, value_inc_vat, intensity, gas_value_inc_vat FROM eco "+
		"WHERE valid_from > ? AND %s IS NOT NULL ORDER BY valid_from ASC", col)
	return s.query(ctx, query, from)
}

// AllDescending returns every stored slot, newest first.
func (s *Store) AllDescending(ctx context.Context) ([]model.Row, error) {
	return s.query(ctx, "SELECT valid_from, value_inc_vat, intensity, gas_value_inc_vat FROM eco "+
		"ORDER BY valid_from DESC")
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]model.Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, query)
	}
	defer rows.Close()

	res := []model.Row{}
	for rows.Next() {
		var validFrom string
		var price, carbon, gasPrice sql.NullFloat64
		if err := rows.Scan(&validFrom, &price, &carbon, &gasPrice); err != nil {
			return nil, errors.Wrap(err, "query Scan")
		}
		t, err := time.ParseInLocation(TimeLayout, validFrom, time.UTC)
		if err != nil {
			return nil, errors.Wrapf(err, "bad valid_from %q", validFrom)
		}
		res = append(res, model.Row{
			ValidFrom: t,
			Price:     nullable(price),
			Carbon:    nullable(carbon),
			GasPrice:  nullable(gasPrice),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query Next")
	}
	return res, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Dump returns a full SQL dump of the database file.
func (s *Store) Dump() (string, error) {
	var buf bytes.Buffer
	writer := bufio.NewWriter(&buf)
	if err := sqlite3dump.Dump(s.Path, writer); err != nil {
		return "", errors.Wrap(err, "Dump sqlite3dump")
	}
	if err := writer.Flush(); err != nil {
		return "", errors.Wrap(err, "Dump Flush")
	}
	return buf.String(), nil
}
