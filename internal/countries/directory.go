package countries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"task-tracker/internal/cache"
	"task-tracker/pkg/logger"
)

// ErrUnexpectedStatus is returned for any non-2xx answer other than 404.
var ErrUnexpectedStatus = errors.New("unexpected directory status")

// country is the subset of the restcountries payload we read.
type country struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

// Directory looks country names up in a restcountries v3.1 compatible
// service. Identical concurrent lookups share one request.
type Directory struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	cache   *cache.Countries
	group   singleflight.Group
}

type DirectoryOption func(*Directory)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) DirectoryOption {
	return func(d *Directory) { d.client = c }
}

// WithCache enables caching of the full catalogue.
func WithCache(c *cache.Countries) DirectoryOption {
	return func(d *Directory) { d.cache = c }
}

// NewDirectory creates a client for baseURL (e.g. https://restcountries.com/v3.1).
// timeout bounds each outbound request.
func NewDirectory(baseURL string, timeout time.Duration, opts ...DirectoryOption) *Directory {
	d := &Directory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// All returns the common name of every country, cache first.
func (d *Directory) All(ctx context.Context) ([]string, error) {
	if names, ok := d.cache.Get(ctx); ok {
		return names, nil
	}
	names, err := d.shared(ctx, "all", d.baseURL+"/all?fields=name")
	if err != nil {
		return nil, err
	}
	d.cache.Set(ctx, names)
	return names, nil
}

// ByName returns the common names of countries matching query. A query
// that matches nothing yields an empty slice and no error.
func (d *Directory) ByName(ctx context.Context, query string) ([]string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []string{}, nil
	}
	u := d.baseURL + "/name/" + url.PathEscape(q) + "?fields=name"
	return d.shared(ctx, "name:"+strings.ToLower(q), u)
}

// shared runs one fetch per key. The fetch itself is detached from the
// caller's cancellation and bounded by d.timeout; a cancelled caller
// returns early while other waiters still get the answer.
func (d *Directory) shared(ctx context.Context, key, u string) ([]string, error) {
	ch := d.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if d.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, d.timeout)
			defer cancel()
		}
		return d.fetch(fctx, u)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

func (d *Directory) fetch(ctx context.Context, u string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Debug(ctx, "Directory lookup matched nothing", "url", u)
		return []string{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload []country
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	names := make([]string, 0, len(payload))
	for _, c := range payload {
		if c.Name.Common != "" {
			names = append(names, c.Name.Common)
		}
	}
	return names, nil
}
