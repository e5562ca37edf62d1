// Package httpc is the resilient JSON client provider adapters share:
// rate limiting, bounded retries with backoff and status to error code mapping
package httpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUA        = "jobacq/1"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
	maxBody          = 8 << 20
)

// Options configures a Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Header is added to every request, e.g. api keys
	Header http.Header

	// RPS <= 0 disables local rate limiting
	RPS   float64
	Burst int

	MaxRetries int
	RetryBase  time.Duration
}

// Client issues GET requests against one provider
type Client struct {
	name    string
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	maxBody int64
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// New builds a Client; name labels logs and errors
func New(name string, o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	var lim *rate.Limiter
	if o.RPS > 0 {
		burst := o.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RPS), burst)
	}
	return &Client{
		name:    name,
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: lim,
		maxBody: maxBody,
		log:     *logger.Named("provider." + name),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// GetJSON fetches path with q and decodes the body into out.
// An undecodable 2xx body is Unavailable: gateways and captcha pages answer 200
func (c *Client) GetJSON(ctx context.Context, path string, q url.Values, out any) error {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s: decode %s", c.name, path)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s: rate wait", c.name)
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "%s: build request", c.name)
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		for k, vv := range c.opts.Header {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}

		start := c.now()
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= c.opts.MaxRetries {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s: transport", c.name)
			}
			if err := c.backoff(ctx, attempt, 0, "transport error"); err != nil {
				return nil, err
			}
			continue
		}

		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", c.now().Sub(start)).
			Msg("provider response")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
			_ = resp.Body.Close()
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s: read body", c.name)
			}
			if int64(len(body)) > c.maxBody {
				return nil, perr.Unavailablef("%s: body of %s exceeds %d bytes", c.name, path, c.maxBody)
			}
			return body, nil
		}

		code := statusCode(resp.StatusCode)
		if code == perr.ErrorCodeTooManyRequests || code == perr.ErrorCodeUnavailable {
			wait := retryAfter(resp.Header.Get("Retry-After"), c.now())
			drain(resp.Body)
			if attempt >= c.opts.MaxRetries {
				return nil, perr.Newf(code, "%s: status %d after %d attempts", c.name, resp.StatusCode, attempt+1)
			}
			if err := c.backoff(ctx, attempt, wait, "status "+strconv.Itoa(resp.StatusCode)); err != nil {
				return nil, err
			}
			continue
		}

		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, perr.Newf(code, "%s: status %d: %s", c.name, resp.StatusCode, string(tail))
	}
}

// statusCode maps an http status to the error code the adapter returns
func statusCode(status int) perr.ErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return perr.ErrorCodeTooManyRequests
	case status == http.StatusRequestTimeout, status >= 500:
		return perr.ErrorCodeUnavailable
	case status == http.StatusUnauthorized:
		return perr.ErrorCodeUnauthorized
	case status == http.StatusForbidden:
		return perr.ErrorCodeForbidden
	case status == http.StatusBadRequest, status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		return perr.ErrorCodeInvalidArgument
	}
	return perr.ErrorCodeUnknown
}

func (c *Client) backoff(ctx context.Context, attempt int, hint time.Duration, why string) error {
	d := hint
	if d <= 0 {
		d = c.opts.RetryBase << uint(attempt)
	}
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	c.log.Warn().Dur("retry_in", d).Int("attempt", attempt).Str("reason", why).Msg("provider retrying")
	return c.sleep(ctx, d)
}

// retryAfter reads delta seconds or an http date; zero when absent
func retryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if s, err := strconv.Atoi(v); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	_ = rc.Close()
}
