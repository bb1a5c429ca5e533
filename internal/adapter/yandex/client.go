// Package yandex implements the forecast source and geocoder ports against
// the Yandex Weather v2 and Yandex Geocoder HTTP APIs.
package yandex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

const (
	// maxErrorBody caps how much of a non-200 body is kept on an HTTPError.
	maxErrorBody = 512

	breakerInterval    = time.Minute
	breakerMinRequests = 5
)

// client is the shared HTTP transport of the Yandex adapters: one GET per
// call, guarded by a circuit breaker, with failures mapped onto the domain
// error types.
type client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func newClient(name string, timeout, breakerTimeout time.Duration, logger *slog.Logger) client {
	return client{
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    breakerInterval,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= breakerMinRequests && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool { return !isOutage(err) },
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "api", name, "from", from.String(), "to", to.String())
			},
		}),
		logger: logger,
	}
}

// isOutage reports whether err says the provider itself is unhealthy.
// Rejections of a single request (4xx other than 429, bad request building,
// caller cancellation) are not outages.
func isOutage(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError || httpErr.StatusCode == http.StatusTooManyRequests
	}
	var netErr *domain.NetworkError
	return errors.As(err, &netErr)
}

// get performs the request and returns the body of a 200 response.
func (c client) get(ctx context.Context, fullURL string, header http.Header) ([]byte, error) {
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, fullURL, header)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.NetworkError{Err: err}
		}
		return nil, err
	}
	return body.([]byte), nil
}

func (c client) do(ctx context.Context, fullURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
