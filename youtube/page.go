package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	ythttp "ytcomments/http"
	"ytcomments/retry"
)

const defaultWatchBase = "https://www.youtube.com"

// initialDataMarkers are the assignment prefixes that precede the embedded
// ytInitialData JSON object in a watch page. Pages vary in which form they
// use, so all known variants are tried in order.
var initialDataMarkers = []string{
	`window["ytInitialData"] = `,
	`window['ytInitialData'] = `,
	`var ytInitialData = `,
	`ytInitialData = `,
}

const clientConfigMarker = "ytcfg.set("

// Page holds the parsed state embedded in a watch page.
type Page struct {
	// VideoID is the video the page was fetched for.
	VideoID string
	// InitialData is the decoded ytInitialData object.
	InitialData map[string]any
	// ClientConfig is the decoded ytcfg object (INNERTUBE_API_KEY lives here).
	ClientConfig map[string]any
}

// PageFetcher retrieves watch pages and extracts their embedded state.
type PageFetcher struct {
	client   *ythttp.Client
	retryCfg retry.Config
	baseURL  string
	log      logrus.FieldLogger
}

// PageFetcherOption configures a PageFetcher.
type PageFetcherOption func(*PageFetcher)

// WithBaseURL overrides the watch page base URL (primarily for tests).
func WithBaseURL(base string) PageFetcherOption {
	return func(f *PageFetcher) {
		f.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithRetryConfig overrides the retry configuration for page fetches.
func WithRetryConfig(cfg retry.Config) PageFetcherOption {
	return func(f *PageFetcher) {
		f.retryCfg = cfg
	}
}

// WithPageLogger sets the logger used for fetch diagnostics.
func WithPageLogger(log logrus.FieldLogger) PageFetcherOption {
	return func(f *PageFetcher) {
		f.log = log
	}
}

// NewPageFetcher creates a PageFetcher backed by the given HTTP client.
func NewPageFetcher(client *ythttp.Client, opts ...PageFetcherOption) *PageFetcher {
	f := &PageFetcher{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		baseURL:  defaultWatchBase,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WatchURL returns the watch page URL for a video ID. The bpctr and
// has_verified parameters bypass content gates that would otherwise return
// an interstitial page without embedded data.
func (f *PageFetcher) WatchURL(videoID string) string {
	return fmt.Sprintf("%s/watch?v=%s&bpctr=9999999999&has_verified=1",
		f.baseURL, url.QueryEscape(videoID))
}

// Fetch retrieves the watch page for videoID and extracts its embedded
// state. Transport failures are retried; parse failures are not.
func (f *PageFetcher) Fetch(ctx context.Context, videoID string) (*Page, error) {
	if !ValidVideoID(videoID) {
		return nil, &ExtractError{Stage: "fetch_page", VideoID: videoID, Err: ErrInvalidVideoID}
	}

	var body []byte
	err := retry.Do(ctx, f.retryCfg, pageFetchClassifier, func(ctx context.Context) error {
		resp, err := f.client.Get(ctx, f.WatchURL(videoID))
		if err != nil {
			return err
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, &ExtractError{Stage: "fetch_page", VideoID: videoID, Err: err}
	}

	html := string(body)
	initialData, err := ExtractInitialData(html)
	if err != nil {
		return nil, &ExtractError{Stage: "parse_page", VideoID: videoID, Err: err}
	}
	clientConfig, err := ExtractClientConfig(html)
	if err != nil {
		// A page without ytcfg still has usable metadata; the caller
		// decides whether the missing API key is fatal.
		f.log.WithField("video_id", videoID).Warn("watch page missing client config")
		clientConfig = map[string]any{}
	}

	return &Page{
		VideoID:      videoID,
		InitialData:  initialData,
		ClientConfig: clientConfig,
	}, nil
}

// pageFetchClassifier treats client errors as permanent: a 404 will not
// improve on retry, while rate limits and server errors can.
func pageFetchClassifier(err error) bool {
	var httpErr *ythttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	var rateErr *ythttp.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	return retry.IsRetryable(err)
}

// ExtractInitialData locates and decodes the ytInitialData object embedded
// in watch page HTML. Script tags are scanned first; a raw scan of the whole
// document is the fallback for pages goquery cannot parse.
func ExtractInitialData(html string) (map[string]any, error) {
	if data := initialDataFromScripts(html); data != nil {
		return data, nil
	}
	if raw := findMarkedJSON(html, initialDataMarkers); raw != "" {
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			return data, nil
		}
	}
	return nil, ErrNoInitialData
}

func initialDataFromScripts(html string) map[string]any {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var data map[string]any
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := findMarkedJSON(s.Text(), initialDataMarkers)
		if raw == "" {
			return true
		}
		var parsed map[string]any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return true
		}
		data = parsed
		return false
	})
	return data
}

// ExtractClientConfig locates and decodes the ytcfg.set(...) object. A page
// can carry several ytcfg.set calls; the one holding INNERTUBE_API_KEY wins,
// falling back to the first decodable object.
func ExtractClientConfig(html string) (map[string]any, error) {
	var first map[string]any
	search := html
	for {
		idx := strings.Index(search, clientConfigMarker)
		if idx < 0 {
			break
		}
		search = search[idx+len(clientConfigMarker):]
		start := strings.IndexByte(search, '{')
		if start < 0 || strings.TrimSpace(search[:start]) != "" {
			continue
		}
		end := findJSONEnd(search, start)
		if end < 0 {
			continue
		}
		var cfg map[string]any
		if err := json.Unmarshal([]byte(search[start:end+1]), &cfg); err != nil {
			continue
		}
		if _, ok := cfg["INNERTUBE_API_KEY"]; ok {
			return cfg, nil
		}
		if first == nil {
			first = cfg
		}
	}
	if first != nil {
		return first, nil
	}
	return nil, ErrNoClientConfig
}

// findMarkedJSON scans text for the first marker whose following content is
// a brace-delimited JSON object, and returns that object's raw text.
func findMarkedJSON(text string, markers []string) string {
	for _, marker := range markers {
		idx := strings.Index(text, marker)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(marker):]
		start := strings.IndexByte(rest, '{')
		if start < 0 || strings.TrimSpace(rest[:start]) != "" {
			continue
		}
		end := findJSONEnd(rest, start)
		if end < 0 {
			continue
		}
		return rest[start : end+1]
	}
	return ""
}

// findJSONEnd returns the index of the brace closing the object opened at
// start, or -1. Braces inside JSON strings and escaped quotes are ignored.
func findJSONEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
