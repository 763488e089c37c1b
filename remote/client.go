package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/iw2rmb/plume"
)

// Meta is a link preview returned by the metadata endpoint.
type Meta struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// Complete reports whether url, title and image are all present.
func (m Meta) Complete() bool {
	return m.URL != "" && m.Title != "" && m.Image != ""
}

// Config configures a Client.
type Config struct {
	// MetaURL receives POST {"targetUrl"} and answers with a Meta.
	MetaURL string
	// ImageURL receives POST {"imageEncoding"} and answers {"imageRef"}.
	ImageURL string

	// RetryMax is the number of retries after a failed attempt. Zero or
	// negative sends each request once.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Timeout bounds each attempt. Zero means 10s.
	Timeout time.Duration

	Logger *slog.Logger
}

const (
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	defaultTimeout      = 10 * time.Second
)

// Client calls the metadata and image endpoints.
type Client struct {
	cfg Config
	hc  *retryablehttp.Client
}

// New returns a client for the configured endpoints.
func New(cfg Config) *Client {
	cfg.RetryMax = max(cfg.RetryMax, 0)
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = defaultRetryWaitMin
	}
	if cfg.RetryWaitMax < cfg.RetryWaitMin {
		cfg.RetryWaitMax = max(defaultRetryWaitMax, cfg.RetryWaitMin)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cl := retryablehttp.NewClient()
	cl.RetryMax = cfg.RetryMax
	cl.RetryWaitMin = cfg.RetryWaitMin
	cl.RetryWaitMax = cfg.RetryWaitMax
	cl.HTTPClient.Timeout = cfg.Timeout
	cl.Logger = cfg.Logger
	return &Client{cfg: cfg, hc: cl}
}

type metaRequest struct {
	TargetURL string `json:"targetUrl"`
}

type imageRequest struct {
	ImageEncoding string `json:"imageEncoding"`
}

type imageResponse struct {
	ImageRef string `json:"imageRef"`
}

// FetchMeta looks up the preview of target. An answer without url, title or
// image is returned together with ErrIncompleteMeta.
func (c *Client) FetchMeta(ctx context.Context, target string) (Meta, error) {
	var m Meta
	if err := c.post(ctx, c.cfg.MetaURL, metaRequest{TargetURL: target}, &m); err != nil {
		return Meta{}, fmt.Errorf("fetch meta: %w", err)
	}
	if !m.Complete() {
		return m, ErrIncompleteMeta
	}
	return m, nil
}

// UploadImage stores a data URL encoded image and returns its reference.
func (c *Client) UploadImage(ctx context.Context, encoding string) (string, error) {
	var res imageResponse
	if err := c.post(ctx, c.cfg.ImageURL, imageRequest{ImageEncoding: encoding}, &res); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if res.ImageRef == "" {
		return "", ErrEmptyRef
	}
	return res.ImageRef, nil
}

func (c *Client) post(ctx context.Context, url string, body, out any) error {
	if url == "" {
		return ErrNoEndpoint
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", plume.UserAgent())

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
