// Package storage provides abstractions for persisting extraction results.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ytcomments/youtube"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrAlreadyExists indicates the entity already exists in storage.
	ErrAlreadyExists = errors.New("storage: already exists")
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s %s: %v\n", storErr.Op, storErr.Entity, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("create", "read", "list", "delete").
	Op string
	// Entity is the entity type ("run", "video", "comment").
	Entity string
	// ID is the entity ID if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }

// ExtractionRun records one completed extraction for a video.
type ExtractionRun struct {
	// ID is the run's unique identifier.
	ID string
	// VideoID is the video the run extracted.
	VideoID string
	// Source names the comment source used ("innertube", "data_api").
	Source string
	// CommentCount is the number of comments the run produced.
	CommentCount int
	// SyntheticToken records whether pagination started from a fabricated
	// token.
	SyntheticToken bool
	// CreatedAt is when the run was saved.
	CreatedAt time.Time
}

// Store persists extraction runs and their comments.
// Implementations must be safe for concurrent use.
type Store interface {
	// SaveRun persists a run's video metadata and full comment set
	// atomically.
	SaveRun(ctx context.Context, run *ExtractionRun, info *youtube.VideoInfo, comments []youtube.Comment) error
	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*ExtractionRun, error)
	// ListRuns retrieves runs for a video, newest first. An empty videoID
	// lists all runs.
	ListRuns(ctx context.Context, videoID string) ([]*ExtractionRun, error)
	// GetVideo retrieves the most recently saved metadata for a video.
	GetVideo(ctx context.Context, videoID string) (*youtube.VideoInfo, error)
	// GetComments retrieves a run's comments in their stored order.
	GetComments(ctx context.Context, runID string) ([]youtube.Comment, error)
	// DeleteRun removes a run and its comments.
	DeleteRun(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
