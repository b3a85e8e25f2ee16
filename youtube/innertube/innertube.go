// Package innertube drives YouTube's internal pagination API to fetch the
// comment thread of a video without a Data API credential.
//
// The flow mirrors what the watch page itself does: an initial continuation
// token is lifted from the page's embedded state (or fabricated when the
// render omitted it), then POSTed to the /youtubei/v1/next endpoint. Each
// response carries one page of comment entities plus the token for the next
// page; pagination ends when no further token appears.
package innertube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	ythttp "ytcomments/http"
)

const (
	nextEndpoint = "https://www.youtube.com/youtubei/v1/next"

	defaultClientName    = "WEB"
	defaultClientVersion = "2.20240304.00.00"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	origin               = "https://www.youtube.com"
)

// Client issues continuation requests against the internal API.
type Client struct {
	httpClient    *ythttp.Client
	endpoint      string
	clientVersion string
	userAgent     string
	log           logrus.FieldLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the continuation endpoint (primarily for tests).
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithClientVersion overrides the client version reported to the API.
func WithClientVersion(version string) ClientOption {
	return func(c *Client) {
		c.clientVersion = version
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates an internal-API client backed by the given HTTP client.
func NewClient(httpClient *ythttp.Client, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:    httpClient,
		endpoint:      nextEndpoint,
		clientVersion: defaultClientVersion,
		userAgent:     defaultUserAgent,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nextRequest is the JSON envelope the continuation endpoint expects.
type nextRequest struct {
	Context      clientContext `json:"context"`
	Continuation string        `json:"continuation"`
}

type clientContext struct {
	Client webClient `json:"client"`
}

type webClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// DecodeToken percent-decodes a continuation token lifted from page data.
// Tokens embedded in HTML sometimes arrive percent-encoded; path-style
// unescaping keeps '+' intact, which matters because the tokens are base64.
func DecodeToken(token string) (string, error) {
	if !strings.ContainsRune(token, '%') {
		return token, nil
	}
	decoded, err := url.PathUnescape(token)
	if err != nil {
		return "", fmt.Errorf("decode continuation token: %w", err)
	}
	return decoded, nil
}

// CommentsRequest POSTs one continuation request and returns the decoded
// response document. A non-2xx status is not fatal by itself: the endpoint
// reports some recoverable conditions with an error status and a JSON body
// that still carries usable data, so the body is decoded regardless.
func (c *Client) CommentsRequest(ctx context.Context, apiKey, token string) (map[string]any, error) {
	decoded, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(nextRequest{
		Context: clientContext{
			Client: webClient{
				ClientName:    defaultClientName,
				ClientVersion: c.clientVersion,
			},
		},
		Continuation: decoded,
	})
	if err != nil {
		return nil, fmt.Errorf("encode continuation request: %w", err)
	}

	reqURL := c.endpoint + "?key=" + url.QueryEscape(apiKey)
	headers := map[string]string{
		"Content-Type":    "application/json",
		"User-Agent":      c.userAgent,
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"Origin":          origin,
		"Referer":         origin + "/",
	}

	resp, err := c.httpClient.Do(ctx, "POST", reqURL, bytes.NewReader(payload), headers)
	body := []byte(nil)
	if resp != nil {
		body = resp.Body
	}
	if err != nil {
		var httpErr *ythttp.HTTPError
		var rateErr *ythttp.RateLimitError
		switch {
		case errors.As(err, &httpErr) && len(httpErr.Body) > 0:
			body = httpErr.Body
			c.log.WithField("status", httpErr.StatusCode).Debug("continuation returned error status, decoding body anyway")
		case errors.As(err, &rateErr) && len(rateErr.Body) > 0:
			body = rateErr.Body
			c.log.WithField("status", rateErr.StatusCode).Debug("continuation returned error status, decoding body anyway")
		default:
			return nil, fmt.Errorf("continuation request: %w", err)
		}
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode continuation response: %w", err)
	}
	return data, nil
}
