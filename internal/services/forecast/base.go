package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ChartCast/pkg/config"
	xhttp "ChartCast/pkg/http"
)

// ErrDisabled is returned when no forecast service URL is configured.
var ErrDisabled = errors.New("forecast service not configured")

// HTTPServiceBase centralizes client construction and JSON POST handling
// for the prediction service.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
	retries int
	backoff time.Duration
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL from config.
func NewHTTPServiceBase(cfg *config.Config) *HTTPServiceBase {
	return newHTTPServiceBase(cfg.Forecast.URL, cfg.Forecast.Retries, xhttp.NewClient(xhttp.WithTimeout(cfg.Forecast.Timeout)))
}

func newHTTPServiceBase(baseURL string, retries int, client *xhttp.Client) *HTTPServiceBase {
	return &HTTPServiceBase{
		baseURL: baseURL,
		client:  client,
		retries: retries,
		backoff: 50 * time.Millisecond,
	}
}

// PostJSON posts payload to path under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return ErrDisabled
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     b.baseURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// PostJSONWithRetry retries transient failures up to the configured count
// with linear backoff.
func (b *HTTPServiceBase) PostJSONWithRetry(ctx context.Context, path string, payload, dest interface{}) error {
	var err error
	for i := 0; i <= b.retries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i) * b.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = b.PostJSON(ctx, path, payload, dest)
		if err == nil || errors.Is(err, ErrDisabled) || !xhttp.IsTemporary(err) {
			return err
		}
	}
	return err
}
