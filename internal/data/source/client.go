package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/timegrain/timegrain/internal/core/model"
	"github.com/timegrain/timegrain/internal/util"
)

// HTTPClient implements BucketSource against the store's REST API
// (GET /api/0/buckets/, GET /api/0/buckets/{id}/events).
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient creates a client for the store at baseURL, e.g.
// "http://localhost:5600". The timeout bounds individual requests; the
// fetch stage's overall deadline comes from the caller's context.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// ListBuckets returns the store's buckets, sorted by ID for stable output.
func (c *HTTPClient) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	body, err := c.get(ctx, c.baseURL+"/api/0/buckets/")
	if err != nil {
		return nil, err
	}

	// The store keys the response by bucket ID.
	var raw map[string]BucketInfo
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode bucket list: %w", err)
	}

	buckets := make([]BucketInfo, 0, len(raw))
	for id, info := range raw {
		if info.ID == "" {
			info.ID = id
		}
		buckets = append(buckets, info)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].ID < buckets[j].ID })
	return buckets, nil
}

// Events returns the bucket's raw events for [startMs, endMs).
func (c *HTTPClient) Events(ctx context.Context, bucketID string, startMs, endMs int64) ([]model.RawEvent, error) {
	q := url.Values{}
	q.Set("start", util.FormatMs(startMs))
	q.Set("end", util.FormatMs(endMs))
	q.Set("limit", "-1")

	u := fmt.Sprintf("%s/api/0/buckets/%s/events?%s", c.baseURL, url.PathEscape(bucketID), q.Encode())
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var events []model.RawEvent
	if err := sonic.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode events for bucket %s: %w", bucketID, err)
	}
	return events, nil
}

func (c *HTTPClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d: %s", u, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
