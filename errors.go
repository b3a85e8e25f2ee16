package ytcomments

import (
	"errors"

	"ytcomments/retry"
	"ytcomments/storage"
	"ytcomments/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, ytcomments.ErrVideoNotFound) {
//		fmt.Println("Video not found")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var exErr *ytcomments.ExtractError
//	if errors.As(err, &exErr) {
//		fmt.Printf("Extraction failed at %s: %v\n", exErr.Stage, exErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// ExtractError wraps errors from a specific extraction stage.
	ExtractError = youtube.ExtractError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
	// StorageError wraps errors during storage operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrAPIKeyNotFound indicates the page carried no internal API key.
	ErrAPIKeyNotFound = youtube.ErrAPIKeyNotFound
	// ErrVideoNotFound indicates the video does not exist.
	ErrVideoNotFound = youtube.ErrVideoNotFound
	// ErrInvalidVideoID indicates the provided video ID is malformed.
	ErrInvalidVideoID = youtube.ErrInvalidVideoID
	// ErrNoInitialData indicates the watch page carried no embedded state.
	ErrNoInitialData = youtube.ErrNoInitialData
	// ErrNetworkTimeout indicates a network timeout occurred.
	ErrNetworkTimeout = youtube.ErrNetworkTimeout

	// Storage errors
	// ErrNotFound indicates an entity was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrAlreadyExists indicates an entity already exists in storage.
	ErrAlreadyExists = storage.ErrAlreadyExists
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = storage.ErrInvalidInput
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like ErrVideoNotFound.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrVideoNotFound) || errors.Is(err, ErrInvalidVideoID) {
		return false
	}
	return retry.IsRetryable(err)
}
