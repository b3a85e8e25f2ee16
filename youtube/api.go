package youtube

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"ytcomments/retry"
)

// Data API quota costs per call type.
const (
	quotaCommentThreadsList = 1
	quotaCommentsList       = 1
	quotaVideosList         = 1
	dailyQuotaUnits         = 10000
)

// APICommentSource implements CommentSource using YouTube Data API v3.
// It requires an API key and consumes daily quota, but is immune to the
// page-layout churn the anonymous source has to track.
type APICommentSource struct {
	service      *yt.Service
	quotaReserve int
	log          logrus.FieldLogger

	// Quota tracking
	mu             sync.Mutex
	estimatedQuota int
	lastQuotaReset time.Time
	quotaExhausted bool

	RetryConfig *retry.Config
}

// NewAPICommentSource creates a Data API backed comment source.
// quotaReserve specifies the minimum quota units to keep in reserve.
func NewAPICommentSource(apiKey string, quotaReserve int, log logrus.FieldLogger) (*APICommentSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	service, err := yt.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	cfg := retry.DefaultConfig()
	return &APICommentSource{
		service:        service,
		quotaReserve:   quotaReserve,
		log:            log,
		estimatedQuota: dailyQuotaUnits,
		lastQuotaReset: time.Now(),
		RetryConfig:    &cfg,
	}, nil
}

// SupportsAnonymous returns false - the Data API needs a credential.
func (a *APICommentSource) SupportsAnonymous() bool {
	return false
}

// Comments fetches the full comment thread for videoID via
// commentThreads.list, following page tokens until exhausted or the request
// ceiling is reached. Replies come back inline (up to the API's per-thread
// cap) and are emitted before their parent, matching the anonymous source's
// output shape.
func (a *APICommentSource) Comments(ctx context.Context, videoID string, opts *CommentOptions) (*CommentResult, error) {
	if !ValidVideoID(videoID) {
		return nil, &ExtractError{Stage: "comments", VideoID: videoID, Err: ErrInvalidVideoID}
	}

	maxRequests := 50
	if opts != nil && opts.MaxRequests > 0 {
		maxRequests = opts.MaxRequests
	}

	result := &CommentResult{
		RunID:   uuid.NewString(),
		VideoID: videoID,
	}

	cfg := a.retryConfig()
	pageToken := ""
	for {
		if result.Diagnostics.Requests >= maxRequests {
			result.Diagnostics.StoppedEarly = "ceiling"
			break
		}

		var resp *yt.CommentThreadListResponse
		err := retry.Do(ctx, cfg, apiErrorClassifier, func(ctx context.Context) error {
			call := a.service.CommentThreads.List([]string{"snippet", "replies"}).
				VideoId(videoID).
				MaxResults(100).
				TextFormat("plainText").
				PageToken(pageToken).
				Context(ctx)

			r, err := call.Do()
			if err != nil {
				if ctx.Err() != nil {
					return ErrNetworkTimeout
				}
				return err
			}
			resp = r
			a.trackQuotaUsage(quotaCommentThreadsList)
			return nil
		})
		result.Diagnostics.Requests++
		if err != nil {
			if result.Diagnostics.Requests == 1 {
				return nil, &ExtractError{Stage: "comments", VideoID: videoID, Err: err}
			}
			// Keep what we accumulated; the failure is a diagnostic.
			a.log.WithFields(logrus.Fields{
				"video_id": videoID,
				"requests": result.Diagnostics.Requests,
			}).WithError(err).Warn("comment pagination stopped on error")
			result.Diagnostics.StoppedEarly = "page_error"
			break
		}

		for _, thread := range resp.Items {
			a.appendThread(result, thread, videoID)
		}

		if opts != nil && opts.OnProgress != nil {
			p := &PageProgress{
				RequestCount:      result.Diagnostics.Requests,
				CommentsRetrieved: len(result.Comments),
				Complete:          resp.NextPageToken == "",
			}
			if err := opts.OnProgress(p); err != nil {
				result.Diagnostics.StoppedEarly = "progress_callback"
				return result, nil
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return result, nil
}

// appendThread converts one API comment thread into flattened records,
// replies first.
func (a *APICommentSource) appendThread(result *CommentResult, thread *yt.CommentThread, videoID string) {
	if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil {
		result.Diagnostics.EntitiesSkipped++
		return
	}

	top := commentFromAPI(thread.Snippet.TopLevelComment, videoID)
	top.ReplyCount = int(thread.Snippet.TotalReplyCount)

	order := 0
	if thread.Replies != nil {
		// The API returns replies newest-first; reverse to display order.
		for i := len(thread.Replies.Comments) - 1; i >= 0; i-- {
			order++
			reply := commentFromAPI(thread.Replies.Comments[i], videoID)
			result.Comments = append(result.Comments, ReplyComment(reply, top.CommentID, order))
		}
	}
	if expected := int(thread.Snippet.TotalReplyCount); expected > order {
		result.Diagnostics.ReplyShortfalls = append(result.Diagnostics.ReplyShortfalls, ReplyShortfall{
			CommentID: top.CommentID,
			Expected:  expected,
			Extracted: order,
			Missing:   expected - order,
		})
	}

	result.Comments = append(result.Comments, TopLevelComment(top))
}

// commentFromAPI maps one API comment resource to decoded content, applying
// the same missing-field sentinels the anonymous source uses.
func commentFromAPI(c *yt.Comment, videoID string) CommentContent {
	content := CommentContent{
		CommentID:     MissingCommentID,
		ChannelID:     MissingChannelID,
		VideoID:       videoID,
		DisplayName:   MissingDisplayName,
		Thumbnail:     MissingThumbnail,
		Content:       MissingContent,
		PublishedTime: MissingPublishedTime,
	}
	if c == nil {
		return content
	}
	if c.Id != "" {
		content.CommentID = c.Id
	}
	s := c.Snippet
	if s == nil {
		return content
	}
	if s.AuthorChannelId != nil && s.AuthorChannelId.Value != "" {
		content.ChannelID = s.AuthorChannelId.Value
	}
	if s.AuthorDisplayName != "" {
		content.DisplayName = s.AuthorDisplayName
	}
	if s.AuthorProfileImageUrl != "" {
		content.Thumbnail = s.AuthorProfileImageUrl
	}
	if s.TextDisplay != "" {
		content.Content = s.TextDisplay
	}
	if s.PublishedAt != "" {
		content.PublishedTime = s.PublishedAt
	}
	content.LikeCount = int(s.LikeCount)
	return content
}

// FetchVideoInfo retrieves video metadata via videos.list.
func (a *APICommentSource) FetchVideoInfo(ctx context.Context, videoID string) (*VideoInfo, error) {
	if !ValidVideoID(videoID) {
		return nil, ErrInvalidVideoID
	}

	var resp *yt.VideoListResponse
	err := retry.Do(ctx, a.retryConfig(), apiErrorClassifier, func(ctx context.Context) error {
		call := a.service.Videos.List([]string{"snippet", "statistics"}).
			Id(videoID).
			Context(ctx)

		r, err := call.Do()
		if err != nil {
			if ctx.Err() != nil {
				return ErrNetworkTimeout
			}
			return err
		}
		resp = r
		a.trackQuotaUsage(quotaVideosList)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	v := resp.Items[0]
	info := &VideoInfo{
		Title:          MissingTitle,
		Channel:        MissingChannel,
		ChannelID:      MissingChannelID,
		Description:    MissingDescription,
		VideoID:        videoID,
		UploadDate:     MissingUploadDate,
		VideoThumbnail: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
	}
	if v.Snippet != nil {
		if v.Snippet.Title != "" {
			info.Title = v.Snippet.Title
		}
		if v.Snippet.ChannelTitle != "" {
			info.Channel = v.Snippet.ChannelTitle
		}
		if v.Snippet.ChannelId != "" {
			info.ChannelID = v.Snippet.ChannelId
		}
		info.Description = v.Snippet.Description
		if v.Snippet.PublishedAt != "" {
			info.UploadDate = v.Snippet.PublishedAt
		}
	}
	if v.Statistics != nil {
		info.Views = v.Statistics.ViewCount
		info.LikeCount = v.Statistics.LikeCount
		info.CommentCount = v.Statistics.CommentCount
	}
	return info, nil
}

func (a *APICommentSource) retryConfig() retry.Config {
	if a.RetryConfig != nil {
		return *a.RetryConfig
	}
	return retry.DefaultConfig()
}

// trackQuotaUsage updates the estimated quota and checks if we've exhausted it.
func (a *APICommentSource) trackQuotaUsage(units int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Reset quota if a day has passed
	if time.Since(a.lastQuotaReset) > 24*time.Hour {
		a.estimatedQuota = dailyQuotaUnits
		a.lastQuotaReset = time.Now()
		a.quotaExhausted = false
		a.log.Info("data api quota reset (new day)")
	}

	a.estimatedQuota -= units

	if a.estimatedQuota < a.quotaReserve && !a.quotaExhausted {
		a.log.WithFields(logrus.Fields{
			"remaining": a.estimatedQuota,
			"reserve":   a.quotaReserve,
		}).Warn("data api quota exhausted")
		a.quotaExhausted = true
	}
}

// EstimatedQuota returns the estimated remaining quota units.
func (a *APICommentSource) EstimatedQuota() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.estimatedQuota
}

// QuotaExhausted returns whether the quota has been exhausted.
func (a *APICommentSource) QuotaExhausted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quotaExhausted
}

// apiErrorClassifier determines if a Data API error is retryable.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrVideoNotFound) || errors.Is(err, ErrInvalidVideoID) {
		return false
	}
	if errors.Is(err, ErrNetworkTimeout) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 403:
			// quotaExceeded is permanent for today; retrying burns nothing
			// but wall time.
			return false
		case 404, 400:
			return false
		case 429, 500, 502, 503, 504:
			return true
		}
	}

	return retry.IsRetryable(err)
}
