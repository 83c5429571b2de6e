// Package collyfetcher implements crawler.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher performs one-shot HTTP GETs through per-request Colly collectors.
// The scheduler owns concurrency and rate limiting, so each collector runs
// synchronously with colly's own limits disabled.
type Fetcher struct {
	cfg       Config
	base      *colly.Collector
	transport http.RoundTripper
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Fetcher{
		cfg:       cfg,
		base:      colly.NewCollector(colly.Async(false)),
		transport: newTransport(),
	}
}

// buildCollector clones the base collector and re-applies per-request
// settings; Clone shares configuration but not callbacks, so concurrent
// fetches never race on each other's response state.
func (f *Fetcher) buildCollector() *colly.Collector {
	collector := f.base.Clone()
	collector.AllowURLRevisit = true // retries re-fetch the same URL
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)
	return collector
}

// Fetch executes a single GET and returns the body together with the final
// post-redirect URL. Non-2xx responses surface as errors via colly's error
// callback.
func (f *Fetcher) Fetch(ctx context.Context, url string) (crawler.FetchResponse, error) {
	var (
		response crawler.FetchResponse
		fetchErr error
	)
	start := time.Now()

	collector := f.buildCollector()
	collector.OnResponse(func(r *colly.Response) {
		response = crawler.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return crawler.FetchResponse{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return crawler.FetchResponse{}, fmt.Errorf("visit %s: %w", url, err)
		}
		if fetchErr != nil {
			return crawler.FetchResponse{}, fmt.Errorf("get %s: %w", url, fetchErr)
		}
		return response, nil
	}
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
