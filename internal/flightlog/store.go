// Package flightlog records missions into a sqlite database: one session
// row per flight, every phase transition and every target location
// forwarded to the vehicle. The same database is read back by the track
// plotting tool.
package flightlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles flight record database operations. Write and read
// connections are opened lazily and independently; all writes are atomic.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store over the database at dbPath. The schema is created on
// first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateSession creates a new mission session and returns its ID. config
// can be a string, []byte or any JSON-serializable value.
func (s *Store) CreateSession(ctx context.Context, vehicleName string, config any) (sessionID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, vehicleName, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

// Session retrieves a mission session by its ID.
func (s *Store) Session(ctx context.Context, id int64) (session *Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var sess Session
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&sess.ID, &sess.StartTime, &sess.Vehicle, &config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}
	if config.Valid {
		sess.Config = &config.String
	}

	return &sess, nil
}

// Sessions returns all recorded sessions ordered by start time.
func (s *Store) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess Session
		var config sql.NullString
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.Vehicle, &config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		if config.Valid {
			sess.Config = &config.String
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// StoreTransition saves a single phase transition for the session.
func (s *Store) StoreTransition(ctx context.Context, sessionID int64, t Transition) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertTransitionSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var transitionErr sql.NullString
	if t.Error != nil {
		transitionErr.Valid = true
		transitionErr.String = *t.Error
	}

	if _, err = stmt.ExecContext(ctx, sessionID, t.Timestamp.UTC(), t.From, t.To, t.Event, transitionErr); err != nil {
		return fmt.Errorf("inserting transition: %w", err)
	}
	return nil
}

// Transitions returns the session's phase transitions in the order they
// were recorded.
func (s *Store) Transitions(ctx context.Context, sessionID int64) (transitions []Transition, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectTransitionsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying transitions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var t Transition
		var transitionErr sql.NullString
		if err = rows.Scan(&t.Timestamp, &t.From, &t.To, &t.Event, &transitionErr); err != nil {
			err = fmt.Errorf("scanning transition: %w", err)
			return
		}
		if transitionErr.Valid {
			t.Error = &transitionErr.String
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// StoreTrackPoints saves a batch of forwarded target locations in a single
// transaction.
func (s *Store) StoreTrackPoints(ctx context.Context, sessionID int64, points []TrackPoint) (err error) {
	if len(points) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]interface{}, 0, len(points)*5)

	var sb strings.Builder
	sb.WriteString(insertTargetSQL)

	for i, p := range points {
		values = append(values, sessionID, p.Timestamp.UTC(), p.Latitude, p.Longitude, p.Altitude)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
	}

	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting track points: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// WithTimeRange restricts Track to points within [start, end].
func WithTimeRange(start, end time.Time) func(*trackQuery) {
	return func(q *trackQuery) {
		q.start = &start
		q.end = &end
	}
}

// WithStartTime restricts Track to points at or after start.
func WithStartTime(start time.Time) func(*trackQuery) {
	return func(q *trackQuery) {
		q.start = &start
	}
}

// WithEndTime restricts Track to points at or before end.
func WithEndTime(end time.Time) func(*trackQuery) {
	return func(q *trackQuery) {
		q.end = &end
	}
}

type trackQuery struct {
	start *time.Time
	end   *time.Time
}

// Track returns the session's forwarded target locations in forwarding
// order. A mission track is small (one point per feed sample), so it is
// returned as a slice rather than paginated.
func (s *Store) Track(ctx context.Context, sessionID int64, options ...func(*trackQuery)) (track []TrackPoint, err error) {
	var q trackQuery
	for _, option := range options {
		option(&q)
	}

	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	var sb strings.Builder
	sb.WriteString(selectTrackSQL)

	args := []interface{}{sessionID}
	if q.start != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, q.start.UTC())
	}
	if q.end != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, q.end.UTC())
	}
	sb.WriteString(" ORDER BY id")

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		err = fmt.Errorf("querying track: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var p TrackPoint
		if err = rows.Scan(&p.Timestamp, &p.Latitude, &p.Longitude, &p.Altitude); err != nil {
			err = fmt.Errorf("scanning track point: %w", err)
			return
		}
		track = append(track, p)
	}
	return track, rows.Err()
}

// Close releases all database connections. After Close the store cannot be
// reused. Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
