package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Sentinel errors for extraction operations.
var (
	// ErrAPIKeyNotFound indicates the Innertube API key was missing from the
	// page's client config. This is the one fatal precondition: no paginated
	// comment request is possible without it.
	ErrAPIKeyNotFound = errors.New("youtube: innertube api key not found in client config")

	ErrVideoNotFound  = errors.New("youtube: video not found")
	ErrInvalidVideoID = errors.New("youtube: invalid video id")
	ErrNoInitialData  = errors.New("youtube: initial data not found in page")
	ErrNoClientConfig = errors.New("youtube: client config not found in page")
	ErrNetworkTimeout = errors.New("youtube: network timeout")
)

// videoIDRegex matches YouTube video IDs (11 URL-safe base64 characters).
var videoIDRegex = regexp.MustCompile(`^[\w-]{11}$`)

// ValidVideoID reports whether s looks like a YouTube video ID.
func ValidVideoID(s string) bool {
	return videoIDRegex.MatchString(s)
}

// CommentSource fetches the comment thread for a single video. Different
// implementations use different strategies (Innertube continuation engine,
// official Data API).
type CommentSource interface {
	// Comments fetches the full comment thread for a video ID.
	Comments(ctx context.Context, videoID string, opts *CommentOptions) (*CommentResult, error)

	// SupportsAnonymous returns true if this source works without an
	// official API credential.
	SupportsAnonymous() bool
}

// CommentOptions configures comment fetching behavior.
type CommentOptions struct {
	// MaxRequests caps the number of comment pages fetched per run (0 =
	// source default of 50). Reply fetches do not count against the cap.
	MaxRequests int

	// RequestDelay is the pacing delay inserted between paginated requests
	// (0 = source default of 100ms). This is pacing, not retry backoff.
	RequestDelay time.Duration

	// OnProgress, if set, is called after each page of results. Return a
	// non-nil error to stop pagination; accumulated comments are kept.
	OnProgress func(p *PageProgress) error
}

// PageProgress reports the state of one pagination step.
type PageProgress struct {
	// RequestCount is the 1-based index of the request just completed.
	RequestCount int
	// CommentsRetrieved is the total count of comments accumulated so far.
	CommentsRetrieved int
	// Complete is true if pagination has finished.
	Complete bool
}

// CommentResult holds the outcome of one extraction run. Extraction is
// best-effort: a partially failed run still returns everything accumulated,
// with the failure surfaced in Diagnostics.
type CommentResult struct {
	// RunID uniquely identifies this extraction run.
	RunID string `json:"run_id"`
	// VideoID is the video the comments belong to.
	VideoID string `json:"video_id"`
	// Comments is the flattened thread. Replies appear before their parent
	// top-level comment, linked through ReplyTo/ReplyOrder.
	Comments []Comment `json:"comments"`
	// Diagnostics carries machine-readable quality signals for the run.
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Diagnostics aggregates the diagnostic-only events of a run: none of these
// represent failures of the extraction call itself.
type Diagnostics struct {
	// Requests is the total number of network requests issued, page and
	// reply fetches alike. Only page fetches count against MaxRequests.
	Requests int `json:"requests"`
	// SyntheticToken is true when the initial continuation token had to be
	// fabricated because the page render omitted it.
	SyntheticToken bool `json:"synthetic_token"`
	// TokenMisses counts comments whose reply-continuation token could not
	// be correlated; their replies were left unfetched.
	TokenMisses int `json:"token_misses"`
	// EntitiesSkipped counts mutation entities that were not decodable
	// comments (the stream also carries non-comment entities).
	EntitiesSkipped int `json:"entities_skipped"`
	// ReplyShortfalls records comments whose extracted replies were fewer
	// than the platform-reported count (deleted or unrenderable replies).
	ReplyShortfalls []ReplyShortfall `json:"reply_shortfalls,omitempty"`
	// StoppedEarly is set when pagination ended before a natural completion:
	// "page_error", "ceiling", or "progress_callback".
	StoppedEarly string `json:"stopped_early,omitempty"`
}

// ReplyShortfall records a parent comment whose reply batch decoded fewer
// replies than advertised.
type ReplyShortfall struct {
	CommentID string `json:"comment_id"`
	Expected  int    `json:"expected"`
	Extracted int    `json:"extracted"`
	Missing   int    `json:"missing"`
}

// ExtractError wraps errors from a specific extraction stage.
type ExtractError struct {
	// Stage is the extraction stage that failed ("fetch_page", "parse_page",
	// "api_key", "comments").
	Stage string
	// VideoID is the video being extracted.
	VideoID string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the extraction error.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("youtube: %s for %s: %v", e.Stage, e.VideoID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As chains.
func (e *ExtractError) Unwrap() error { return e.Err }
