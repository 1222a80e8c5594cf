package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the provider has no volume for an id.
var ErrNotFound = errors.New("googlebooks: volume not found")

// StatusError reports a non-200 answer from the provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

type Options struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
	RPS        float64
	MaxRetries int
	// Backoff is the first retry delay; it doubles on each further attempt.
	Backoff time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "bookshelf/1.0"
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

type VolumeInfo struct {
	Title         string      `json:"title"`
	Subtitle      string      `json:"subtitle"`
	Authors       []string    `json:"authors"`
	Publisher     string      `json:"publisher"`
	PublishedDate string      `json:"publishedDate"`
	Description   string      `json:"description"`
	PageCount     int         `json:"pageCount"`
	Language      string      `json:"language"`
	InfoLink      string      `json:"infoLink"`
	ImageLinks    *ImageLinks `json:"imageLinks"`
}

// Volume matches an item of /volumes and the body of /volumes/{id}.
type Volume struct {
	ID         string      `json:"id"`
	VolumeInfo *VolumeInfo `json:"volumeInfo"`
}

// VolumesResponse matches /volumes?q=.
type VolumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

func (c *Client) SearchVolumes(ctx context.Context, query string, maxResults int) (*VolumesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if maxResults > 0 {
		params.Set("maxResults", strconv.Itoa(maxResults))
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var res VolumesResponse
	if err := c.get(ctx, c.baseURL+"/volumes?"+params.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetVolume(ctx context.Context, id string) (*Volume, error) {
	u := c.baseURL + "/volumes/" + url.PathEscape(id)
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}

	var res Volume
	if err := c.get(ctx, u, &res); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// do performs one attempt and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, url string, target any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return true, statusErr
		}
		return false, statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}
