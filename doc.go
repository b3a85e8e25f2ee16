// Package ytcomments extracts video metadata and full comment threads from
// YouTube watch pages.
//
// It works the way the watch page itself does: the page's embedded state
// (ytInitialData and ytcfg) is parsed out of the HTML, and the comment
// section is paginated through the internal continuation API. No official
// API credential is required for this path; an optional Data API backed
// source is available for callers that have one.
//
// Overview
//
// ytcomments provides high-level convenience functions for the most common
// operations:
//
//   - FetchComments: Extract the full comment thread for a video
//   - FetchVideoInfo: Extract video metadata from a watch page
//   - FetchAll: Both of the above from a single page fetch
//
// Quick Start
//
// Extract a comment thread:
//
//	ctx := context.Background()
//	result, err := ytcomments.FetchComments(ctx, "dQw4w9WgXcQ")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, c := range result.Comments {
//		fmt.Printf("[%d] %s: %s\n", c.CommentLevel, c.DisplayName, c.Content)
//	}
//
// Get video metadata:
//
//	info, err := ytcomments.FetchVideoInfo(ctx, "dQw4w9WgXcQ")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Title: %s\nViews: %d\n", info.Title, info.Views)
//
// Comment Ordering
//
// Results are a flattened two-level thread. Replies are emitted immediately
// before their parent comment, linked through the ReplyTo field, with
// ReplyOrder restoring display order within a reply batch. CommentLevel is
// 0 for top-level comments and 1 for replies.
//
// Extraction is best-effort: a run that fails mid-pagination still returns
// everything accumulated so far, with the cause recorded in
// CommentResult.Diagnostics.
//
// Configuration
//
// ytcomments uses a configuration system that loads settings from multiple
// sources:
//
//   1. Environment variables (highest priority)
//   2. Config file (ytcomments.json or ~/.config/ytcomments/ytcomments.json)
//   3. Default values (lowest priority)
//
// Environment variables:
//
//   - YTC_CLIENT_VERSION: Web client version reported to the pagination API
//   - YTC_USER_AGENT: Browser user agent for pagination requests
//   - YTC_MAX_REQUESTS: Maximum comment pages fetched per run
//   - YTC_REQUEST_DELAY: Pacing delay between paginated requests
//   - YTC_HTTP_TIMEOUT: Per-request HTTP timeout
//   - YTC_INNERTUBE_RPS: Rate limit for pagination API requests
//   - YTC_WATCH_PAGE_RPS: Rate limit for watch page fetches
//   - YTC_DATA_API_KEY: Official Data API key (enables the api source)
//   - YTC_DB_PATH: SQLite archive database path
//   - YTC_LOG_LEVEL: Logging verbosity
//
// Error Handling
//
// All operations return errors that implement standard Go error handling:
//
// Checking for sentinel errors:
//
//	if errors.Is(err, ytcomments.ErrAPIKeyNotFound) {
//		fmt.Println("Page carried no API key; cannot paginate comments")
//	}
//
// Extracting wrapped error details:
//
//	var exErr *ytcomments.ExtractError
//	if errors.As(err, &exErr) {
//		fmt.Printf("Extraction failed at %s for %s: %v\n", exErr.Stage, exErr.VideoID, exErr.Err)
//	}
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - youtube: Watch page parsing, metadata extraction, comment models
//   - youtube/innertube: Continuation API client and comment pagination
//   - config: Configuration management
//   - storage: Persistent run archive
//   - retry: Exponential backoff retry logic
//
// Example using the innertube package directly:
//
//	client := http.New(nil)
//	lister := innertube.NewCommentLister(client,
//		innertube.WithMaxRequests(10),
//		innertube.WithRequestDelay(200*time.Millisecond))
//	result, err := lister.Comments(ctx, "dQw4w9WgXcQ", nil)
package ytcomments
