package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const permalinkBase = "https://twitter.com"

var (
	ErrUnauthorized = errors.New("unauthorized: check FEEDVIEW_TOKEN")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrNotFound     = errors.New("status not found")
)

// TimelineQuery mirrors the home timeline paging parameters. SinceID is
// exclusive, MaxID is inclusive; zero means unset.
type TimelineQuery struct {
	Count   int
	SinceID int64
	MaxID   int64
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

func (c *Client) HomeTimeline(ctx context.Context, q TimelineQuery) ([]Status, error) {
	if q.Count < 1 {
		q.Count = 20
	}

	v := make(url.Values)
	v.Set("count", strconv.Itoa(q.Count))
	v.Set("tweet_mode", "extended")
	if q.SinceID > 0 {
		v.Set("since_id", strconv.FormatInt(q.SinceID, 10))
	}
	if q.MaxID > 0 {
		v.Set("max_id", strconv.FormatInt(q.MaxID, 10))
	}

	var statuses []Status
	if err := c.doJSON(ctx, http.MethodGet, "/statuses/home_timeline.json?"+v.Encode(), "home timeline", &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) ShowStatus(ctx context.Context, id int64) (Status, error) {
	v := make(url.Values)
	v.Set("id", strconv.FormatInt(id, 10))
	v.Set("tweet_mode", "extended")

	var status Status
	if err := c.doJSON(ctx, http.MethodGet, "/statuses/show.json?"+v.Encode(), "show status", &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

func (c *Client) Like(ctx context.Context, id int64) (Status, error) {
	return c.favorite(ctx, "/favorites/create.json", id, "like status")
}

func (c *Client) Unlike(ctx context.Context, id int64) (Status, error) {
	return c.favorite(ctx, "/favorites/destroy.json", id, "unlike status")
}

func (c *Client) favorite(ctx context.Context, path string, id int64, resource string) (Status, error) {
	v := make(url.Values)
	v.Set("id", strconv.FormatInt(id, 10))

	var status Status
	if err := c.doJSON(ctx, http.MethodPost, path+"?"+v.Encode(), resource, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, resource string, out any) error {
	req, err := c.newRequest(ctx, method, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", resource, ErrUnauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", resource, ErrRateLimited)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", resource, ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s failed with status %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
