package innertube

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	ythttp "ytcomments/http"
	"ytcomments/youtube"
)

const (
	defaultMaxRequests  = 50
	defaultRequestDelay = 100 * time.Millisecond
)

// APIKey extracts the internal API key from a page's client config.
func APIKey(clientConfig map[string]any) (string, error) {
	if key, ok := clientConfig["INNERTUBE_API_KEY"].(string); ok && key != "" {
		return key, nil
	}
	return "", youtube.ErrAPIKeyNotFound
}

// CommentLister fetches full comment threads through the continuation API.
// It implements youtube.CommentSource.
type CommentLister struct {
	client       *Client
	pageFetcher  *youtube.PageFetcher
	log          logrus.FieldLogger
	maxRequests  int
	requestDelay time.Duration
}

// ListerOption configures a CommentLister.
type ListerOption func(*CommentLister)

// WithMaxRequests caps the number of continuation requests per run.
func WithMaxRequests(n int) ListerOption {
	return func(l *CommentLister) {
		if n > 0 {
			l.maxRequests = n
		}
	}
}

// WithRequestDelay sets the pacing delay between continuation requests.
func WithRequestDelay(d time.Duration) ListerOption {
	return func(l *CommentLister) {
		if d >= 0 {
			l.requestDelay = d
		}
	}
}

// WithClient overrides the internal-API client.
func WithClient(client *Client) ListerOption {
	return func(l *CommentLister) {
		l.client = client
	}
}

// WithPageFetcher overrides the watch page fetcher.
func WithPageFetcher(fetcher *youtube.PageFetcher) ListerOption {
	return func(l *CommentLister) {
		l.pageFetcher = fetcher
	}
}

// WithListerLogger sets the logger used for run diagnostics.
func WithListerLogger(log logrus.FieldLogger) ListerOption {
	return func(l *CommentLister) {
		l.log = log
	}
}

// NewCommentLister creates a CommentLister backed by the given HTTP client.
func NewCommentLister(httpClient *ythttp.Client, opts ...ListerOption) *CommentLister {
	l := &CommentLister{
		client:       NewClient(httpClient),
		pageFetcher:  youtube.NewPageFetcher(httpClient),
		log:          logrus.StandardLogger(),
		maxRequests:  defaultMaxRequests,
		requestDelay: defaultRequestDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SupportsAnonymous returns true - the continuation API needs no credential.
func (l *CommentLister) SupportsAnonymous() bool {
	return true
}

// Comments fetches the watch page for videoID and extracts its full
// comment thread.
func (l *CommentLister) Comments(ctx context.Context, videoID string, opts *youtube.CommentOptions) (*youtube.CommentResult, error) {
	page, err := l.pageFetcher.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return l.GetComments(ctx, page.InitialData, page.ClientConfig, videoID, opts)
}

// GetComments runs comment pagination over already-extracted page state.
// Extraction is best-effort: a mid-run page failure ends pagination and
// returns everything accumulated so far. The only fatal condition is a
// client config without an API key, since no request can be made at all.
func (l *CommentLister) GetComments(ctx context.Context, initialData any, clientConfig map[string]any, videoID string, opts *youtube.CommentOptions) (*youtube.CommentResult, error) {
	apiKey, err := APIKey(clientConfig)
	if err != nil {
		return nil, &youtube.ExtractError{Stage: "api_key", VideoID: videoID, Err: err}
	}

	maxRequests := l.maxRequests
	delay := l.requestDelay
	if opts != nil {
		if opts.MaxRequests > 0 {
			maxRequests = opts.MaxRequests
		}
		if opts.RequestDelay > 0 {
			delay = opts.RequestDelay
		}
	}

	result := &youtube.CommentResult{
		RunID:   uuid.NewString(),
		VideoID: videoID,
	}

	token, synthetic := InitialContinuationToken(initialData, videoID)
	result.Diagnostics.SyntheticToken = synthetic
	if synthetic {
		l.log.WithField("video_id", videoID).Debug("page render omitted comments section, using synthetic token")
	}

	run := &runState{
		lister:  l,
		apiKey:  apiKey,
		videoID: videoID,
		delay:   delay,
		result:  result,
	}

	// The ceiling bounds comment pages only. Reply fetches ride along
	// uncounted, so every page the budget allows still gets its replies.
	for pageCount := 1; ; pageCount++ {
		if pageCount > maxRequests {
			result.Diagnostics.StoppedEarly = "ceiling"
			break
		}

		data, err := run.request(ctx, token)
		if err != nil {
			l.log.WithFields(logrus.Fields{
				"video_id": videoID,
				"requests": result.Diagnostics.Requests,
			}).WithError(err).Warn("comment pagination stopped on error")
			result.Diagnostics.StoppedEarly = "page_error"
			break
		}

		run.extractPage(ctx, data, pageCount)
		token = NextContinuationToken(data, pageCount)

		if opts != nil && opts.OnProgress != nil {
			p := &youtube.PageProgress{
				RequestCount:      pageCount,
				CommentsRetrieved: len(result.Comments),
				Complete:          token == "",
			}
			if err := opts.OnProgress(p); err != nil {
				result.Diagnostics.StoppedEarly = "progress_callback"
				return result, nil
			}
		}

		if token == "" {
			break
		}
	}

	return result, nil
}

// runState carries per-run bookkeeping through page and reply extraction.
type runState struct {
	lister  *CommentLister
	apiKey  string
	videoID string
	delay   time.Duration
	result  *youtube.CommentResult
}

// request issues one continuation request, pacing all requests after the
// first.
func (r *runState) request(ctx context.Context, token string) (map[string]any, error) {
	if r.result.Diagnostics.Requests > 0 && r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.result.Diagnostics.Requests++
	return r.lister.client.CommentsRequest(ctx, r.apiKey, token)
}

// extractPage appends one page's comments to the result. Top-level comments
// keep the order of the page's entity batch; each parent's replies are
// fetched eagerly and emitted just before it.
func (r *runState) extractPage(ctx context.Context, data map[string]any, pageCount int) {
	items, _ := ContinuationItems(data, pageCount)

	for _, parent := range r.decodeEntityList(data) {
		if parent.ReplyCount > 0 {
			if token := replyToken(items, parent.CommentID); token != "" {
				r.fetchReplies(ctx, parent, token)
			} else {
				r.lister.log.WithFields(logrus.Fields{
					"video_id":   r.videoID,
					"comment_id": parent.CommentID,
				}).Debug("no reply continuation token correlated")
				r.result.Diagnostics.TokenMisses++
			}
		}

		r.result.Comments = append(r.result.Comments, youtube.TopLevelComment(parent))
	}
}

// replyToken correlates a parent comment to its reply-continuation token by
// scanning the page's item list for the thread block carrying the same
// comment ID.
func replyToken(items []any, commentID string) string {
	for _, item := range items {
		id, ok := youtube.TextFromPath(item,
			"commentThreadRenderer", "commentViewModel", "commentViewModel", "commentId")
		if !ok || id != commentID {
			continue
		}
		token, _ := youtube.TextFromPath(item,
			"commentThreadRenderer", "replies", "commentRepliesRenderer",
			"contents", "0", "continuationItemRenderer",
			"continuationEndpoint", "continuationCommand", "token")
		return token
	}
	return ""
}

// fetchReplies issues the single reply continuation for a parent comment and
// appends its replies. Reply batches are not paginated further; a shortfall
// against the parent's advertised count is recorded as a diagnostic.
func (r *runState) fetchReplies(ctx context.Context, parent youtube.CommentContent, token string) {
	data, err := r.request(ctx, token)
	if err != nil {
		r.lister.log.WithFields(logrus.Fields{
			"video_id":   r.videoID,
			"comment_id": parent.CommentID,
		}).WithError(err).Warn("reply fetch failed")
		return
	}

	order := 0
	for _, reply := range r.decodeEntityList(data) {
		if reply.CommentID == parent.CommentID {
			continue
		}
		order++
		r.result.Comments = append(r.result.Comments, youtube.ReplyComment(reply, parent.CommentID, order))
	}

	if order < parent.ReplyCount {
		r.result.Diagnostics.ReplyShortfalls = append(r.result.Diagnostics.ReplyShortfalls, youtube.ReplyShortfall{
			CommentID: parent.CommentID,
			Expected:  parent.ReplyCount,
			Extracted: order,
			Missing:   parent.ReplyCount - order,
		})
	}
}

// decodeEntityList decodes all comment entities from a response's mutation
// batch, preserving batch order. Mutations that are not comment payloads are
// counted and skipped.
func (r *runState) decodeEntityList(data map[string]any) []youtube.CommentContent {
	v, ok := youtube.FromPath(data, "frameworkUpdates", "entityBatchUpdate", "mutations")
	if !ok {
		return nil
	}
	mutations, ok := v.([]any)
	if !ok {
		return nil
	}

	var comments []youtube.CommentContent
	for _, m := range mutations {
		payload, ok := youtube.FromPath(m, "payload", "commentEntityPayload")
		if !ok {
			continue
		}
		c, ok := r.decodeCommentEntity(payload)
		if !ok {
			r.result.Diagnostics.EntitiesSkipped++
			continue
		}
		comments = append(comments, c)
	}
	return comments
}

// decodeCommentEntity maps one commentEntityPayload to decoded content.
// Author and properties blocks are mandatory: a payload missing either is
// some other entity type riding the same batch, not a comment. Within those
// blocks, individual fields degrade to missing-value sentinels.
func (r *runState) decodeCommentEntity(payload any) (youtube.CommentContent, bool) {
	if _, ok := youtube.FromPath(payload, "author"); !ok {
		return youtube.CommentContent{}, false
	}
	if _, ok := youtube.FromPath(payload, "properties"); !ok {
		return youtube.CommentContent{}, false
	}

	c := youtube.CommentContent{
		CommentID:     youtube.TextOr(payload, youtube.MissingCommentID, "properties", "commentId"),
		ChannelID:     youtube.TextOr(payload, youtube.MissingChannelID, "author", "channelId"),
		VideoID:       r.videoID,
		DisplayName:   youtube.TextOr(payload, youtube.MissingDisplayName, "author", "displayName"),
		Thumbnail:     youtube.TextOr(payload, youtube.MissingThumbnail, "author", "avatarThumbnailUrl"),
		Content:       youtube.TextOr(payload, youtube.MissingContent, "properties", "content", "content"),
		PublishedTime: youtube.TextOr(payload, youtube.MissingPublishedTime, "properties", "publishedTime"),
	}

	if text, ok := youtube.TextFromPath(payload, "author", "isVerified"); ok {
		if verified, ok := youtube.ParseBoolLenient(text); ok {
			c.UserVerified = verified
		}
	}

	// The toolbar is optional and its counts are display strings.
	if text, ok := youtube.TextFromPath(payload, "toolbar", "likeCountNotliked"); ok {
		if n, err := strconv.Atoi(text); err == nil {
			c.LikeCount = n
		}
	}
	if text, ok := youtube.TextFromPath(payload, "toolbar", "replyCount"); ok && text != "" {
		if n, err := strconv.Atoi(text); err == nil {
			c.ReplyCount = n
		}
	}

	return c, true
}
