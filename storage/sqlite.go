package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ytcomments/youtube"
)

// schema creates the run archive tables. Stored comments keep their emission
// order through the position column, so a run can be replayed exactly as it
// was extracted.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	video_id        TEXT NOT NULL,
	source          TEXT NOT NULL,
	comment_count   INTEGER NOT NULL,
	synthetic_token INTEGER NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_video ON runs(video_id, created_at);

CREATE TABLE IF NOT EXISTS videos (
	video_id          TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	channel           TEXT NOT NULL,
	channel_id        TEXT NOT NULL,
	description       TEXT NOT NULL,
	views             INTEGER NOT NULL,
	comment_count     INTEGER NOT NULL,
	like_count        INTEGER NOT NULL,
	video_thumbnail   TEXT NOT NULL,
	upload_date       TEXT NOT NULL,
	channel_thumbnail TEXT NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
	run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	comment_id     TEXT NOT NULL,
	channel_id     TEXT NOT NULL,
	video_id       TEXT NOT NULL,
	display_name   TEXT NOT NULL,
	user_verified  INTEGER NOT NULL,
	thumbnail      TEXT NOT NULL,
	content        TEXT NOT NULL,
	published_time TEXT NOT NULL,
	like_count     INTEGER NOT NULL,
	reply_count    INTEGER NOT NULL,
	comment_level  INTEGER NOT NULL,
	reply_to       TEXT NOT NULL,
	reply_order    INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the archive database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	// SQLite handles one writer; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists a run, its video metadata, and its comments in one
// transaction. Saving a run ID twice fails with ErrAlreadyExists.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *ExtractionRun, info *youtube.VideoInfo, comments []youtube.Comment) error {
	if run == nil || run.ID == "" || run.VideoID == "" {
		return &StorageError{Op: "create", Entity: "run", Err: ErrInvalidInput}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "create", Entity: "run", ID: run.ID, Err: err}
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, run.ID).Scan(&exists)
	if err == nil {
		return &StorageError{Op: "create", Entity: "run", ID: run.ID, Err: ErrAlreadyExists}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return &StorageError{Op: "create", Entity: "run", ID: run.ID, Err: err}
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, video_id, source, comment_count, synthetic_token, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.VideoID, run.Source, len(comments), boolToInt(run.SyntheticToken), createdAt)
	if err != nil {
		return &StorageError{Op: "create", Entity: "run", ID: run.ID, Err: err}
	}

	if info != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO videos (video_id, title, channel, channel_id, description, views,
			                     comment_count, like_count, video_thumbnail, upload_date,
			                     channel_thumbnail, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(video_id) DO UPDATE SET
			     title = excluded.title,
			     channel = excluded.channel,
			     channel_id = excluded.channel_id,
			     description = excluded.description,
			     views = excluded.views,
			     comment_count = excluded.comment_count,
			     like_count = excluded.like_count,
			     video_thumbnail = excluded.video_thumbnail,
			     upload_date = excluded.upload_date,
			     channel_thumbnail = excluded.channel_thumbnail,
			     updated_at = excluded.updated_at`,
			info.VideoID, info.Title, info.Channel, info.ChannelID, info.Description,
			info.Views, info.CommentCount, info.LikeCount, info.VideoThumbnail,
			info.UploadDate, info.ChannelThumbnail, createdAt)
		if err != nil {
			return &StorageError{Op: "create", Entity: "video", ID: info.VideoID, Err: err}
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comments (run_id, position, comment_id, channel_id, video_id,
		                       display_name, user_verified, thumbnail, content,
		                       published_time, like_count, reply_count, comment_level,
		                       reply_to, reply_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &StorageError{Op: "create", Entity: "comment", Err: err}
	}
	defer stmt.Close()

	for i, c := range comments {
		_, err = stmt.ExecContext(ctx, run.ID, i, c.CommentID, c.ChannelID, c.VideoID,
			c.DisplayName, boolToInt(c.UserVerified), c.Thumbnail, c.Content,
			c.PublishedTime, c.LikeCount, c.ReplyCount, c.CommentLevel,
			c.ReplyTo, c.ReplyOrder)
		if err != nil {
			return &StorageError{Op: "create", Entity: "comment", ID: c.CommentID, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "create", Entity: "run", ID: run.ID, Err: err}
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*ExtractionRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, source, comment_count, synthetic_token, created_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "run", ID: id, Err: err}
	}
	return run, nil
}

// ListRuns retrieves runs for a video, newest first. An empty videoID lists
// all runs.
func (s *SQLiteStore) ListRuns(ctx context.Context, videoID string) ([]*ExtractionRun, error) {
	query := `SELECT id, video_id, source, comment_count, synthetic_token, created_at
	          FROM runs`
	args := []any{}
	if videoID != "" {
		query += " WHERE video_id = ?"
		args = append(args, videoID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "list", Entity: "run", Err: err}
	}
	defer rows.Close()

	var runs []*ExtractionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, &StorageError{Op: "list", Entity: "run", Err: err}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Entity: "run", Err: err}
	}
	return runs, nil
}

// GetVideo retrieves the most recently saved metadata for a video.
func (s *SQLiteStore) GetVideo(ctx context.Context, videoID string) (*youtube.VideoInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT video_id, title, channel, channel_id, description, views,
		        comment_count, like_count, video_thumbnail, upload_date, channel_thumbnail
		 FROM videos WHERE video_id = ?`, videoID)

	var info youtube.VideoInfo
	err := row.Scan(&info.VideoID, &info.Title, &info.Channel, &info.ChannelID,
		&info.Description, &info.Views, &info.CommentCount, &info.LikeCount,
		&info.VideoThumbnail, &info.UploadDate, &info.ChannelThumbnail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &StorageError{Op: "read", Entity: "video", ID: videoID, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "video", ID: videoID, Err: err}
	}
	return &info, nil
}

// GetComments retrieves a run's comments in their stored order.
func (s *SQLiteStore) GetComments(ctx context.Context, runID string) ([]youtube.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT comment_id, channel_id, video_id, display_name, user_verified,
		        thumbnail, content, published_time, like_count, reply_count,
		        comment_level, reply_to, reply_order
		 FROM comments WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, &StorageError{Op: "list", Entity: "comment", ID: runID, Err: err}
	}
	defer rows.Close()

	var comments []youtube.Comment
	for rows.Next() {
		var c youtube.Comment
		var verified int
		err := rows.Scan(&c.CommentID, &c.ChannelID, &c.VideoID, &c.DisplayName,
			&verified, &c.Thumbnail, &c.Content, &c.PublishedTime, &c.LikeCount,
			&c.ReplyCount, &c.CommentLevel, &c.ReplyTo, &c.ReplyOrder)
		if err != nil {
			return nil, &StorageError{Op: "list", Entity: "comment", ID: runID, Err: err}
		}
		c.UserVerified = verified != 0
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Entity: "comment", ID: runID, Err: err}
	}
	return comments, nil
}

// DeleteRun removes a run and its comments.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return &StorageError{Op: "delete", Entity: "run", ID: id, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &StorageError{Op: "delete", Entity: "run", ID: id, Err: ErrNotFound}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*ExtractionRun, error) {
	var run ExtractionRun
	var synthetic int
	err := row.Scan(&run.ID, &run.VideoID, &run.Source, &run.CommentCount,
		&synthetic, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	run.SyntheticToken = synthetic != 0
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
