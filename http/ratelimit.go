package http

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-domain request rate limiting using a token bucket.
// The comments pagination loop is strictly sequential, so the limiter mostly
// acts as a pacing floor between consecutive requests to the same host.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines rate limiting behavior.
type RateLimiterConfig struct {
	// InnertubeRPS is requests per second for the Innertube API (default: 2.5).
	InnertubeRPS float64
	// WatchPageRPS is requests per second for watch-page HTML fetches.
	WatchPageRPS float64
	// DataAPIRPS is requests per second for the YouTube Data API.
	DataAPIRPS float64
	// CustomRates maps domains to RPS values, overriding the defaults.
	CustomRates map[string]float64
}

// DefaultRateLimiterConfig returns conservative defaults.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		InnertubeRPS: 2.5,
		WatchPageRPS: 1.0,
		DataAPIRPS:   1.0,
		CustomRates:  make(map[string]float64),
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.InnertubeRPS == 0 {
		cfg.InnertubeRPS = DefaultRateLimiterConfig().InnertubeRPS
	}
	if cfg.WatchPageRPS == 0 {
		cfg.WatchPageRPS = DefaultRateLimiterConfig().WatchPageRPS
	}
	if cfg.DataAPIRPS == 0 {
		cfg.DataAPIRPS = DefaultRateLimiterConfig().DataAPIRPS
	}
	if cfg.CustomRates == nil {
		cfg.CustomRates = make(map[string]float64)
	}

	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait blocks until the rate limit allows a request for the given URL.
// Returns an error if the context is canceled or its deadline is exceeded.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}

	limiter := rl.getLimiter(urlStr)
	if limiter == nil {
		// No rate limiting for this domain
		return nil
	}

	if !limiter.Allow() {
		reservation := limiter.Reserve()
		if !reservation.OK() {
			return fmt.Errorf("rate limit: cannot reserve token")
		}

		select {
		case <-time.After(reservation.Delay()):
			return nil
		case <-ctx.Done():
			reservation.Cancel()
			return ctx.Err()
		}
	}

	return nil
}

// SetCustomRate sets a custom rate limit for a specific domain.
func (rl *RateLimiter) SetCustomRate(domain string, rps float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.config.CustomRates[domain] = rps

	// Clear existing limiter to force recreation with the new rate
	delete(rl.limiters, domain)
}

// getLimiter returns the rate limiter for a given URL, creating one if necessary.
func (rl *RateLimiter) getLimiter(urlStr string) *rate.Limiter {
	domain := rl.extractDomain(urlStr)
	rps := rl.getRPS(domain)

	// Unlimited (0 RPS means no limiter)
	if rps == 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limiters[domain]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	rl.limiters[domain] = limiter
	return limiter
}

// getRPS returns the requests per second for a given domain.
func (rl *RateLimiter) getRPS(domain string) float64 {
	if rps, ok := rl.config.CustomRates[domain]; ok {
		return rps
	}

	switch domain {
	case "www.youtube.com", "youtube.com":
		return rl.config.InnertubeRPS
	case "www.googleapis.com", "googleapis.com":
		return rl.config.DataAPIRPS
	default:
		// Unknown hosts get the conservative watch-page rate
		return rl.config.WatchPageRPS
	}
}

// extractDomain extracts the domain from a URL string.
func (rl *RateLimiter) extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "unknown"
	}

	host := u.Host
	if host == "" {
		return "unknown"
	}

	// Remove port if present
	if idx := strings.IndexByte(host, ':'); idx != -1 {
		host = host[:idx]
	}

	return host
}
