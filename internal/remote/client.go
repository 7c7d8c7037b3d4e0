package remote

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/swelljoe/wthrq/internal/failure"
	"github.com/swelljoe/wthrq/internal/payload"
)

const (
	AcceptGeoJSON = "application/geo+json"
	AcceptJSON    = "application/json"
)

// Options configures a Client.
type Options struct {
	UserAgent string
	Referer   string
	Timeout   time.Duration
	Delay     time.Duration
}

// Client fetches JSON documents from the NWS and Nominatim APIs. Every
// request is preceded by a fixed pacing delay to stay within the usage
// policies of both services.
type Client struct {
	UserAgent  string
	Referer    string
	Delay      time.Duration
	HTTPClient *http.Client

	log   zerolog.Logger
	sleep func(time.Duration)
}

// NewClient creates a new API client
func NewClient(opts Options, log zerolog.Logger) *Client {
	return &Client{
		UserAgent: opts.UserAgent,
		Referer:   opts.Referer,
		Delay:     opts.Delay,
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		log: log,
	}
}

// GetJSON paces, fetches url and decodes the body. Failures are reported as
// *failure.SourceError tagged with the URL.
func (c *Client) GetJSON(ctx context.Context, url, accept string) (payload.Document, error) {
	if err := c.pace(ctx); err != nil {
		return payload.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return payload.Document{}, &failure.SourceError{Origin: failure.FromURL(url, 0), Cause: failure.CauseNetwork, Err: err}
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", accept)
	if c.Referer != "" {
		req.Header.Set("Referer", c.Referer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.log.Debug().Str("url", url).Err(err).Msg("request failed")
		return payload.Document{}, &failure.SourceError{Origin: failure.FromURL(url, 0), Cause: failure.CauseNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		final := url
		if resp.Request != nil && resp.Request.URL != nil {
			final = resp.Request.URL.String()
		}
		c.log.Debug().Str("url", final).Int("status", resp.StatusCode).Msg("unexpected status")
		return payload.Document{}, &failure.SourceError{Origin: failure.FromURL(final, resp.StatusCode), Cause: failure.CauseNot200}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return payload.Document{}, &failure.SourceError{Origin: failure.FromURL(url, 0), Cause: failure.CauseNetwork, Err: err}
	}

	c.log.Debug().Str("url", url).Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("fetched")

	return payload.Decode(body, failure.FromURL(url, resp.StatusCode))
}

func (c *Client) pace(ctx context.Context) error {
	if c.Delay <= 0 {
		return nil
	}
	if c.sleep != nil {
		c.sleep(c.Delay)
		return nil
	}

	timer := time.NewTimer(c.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
