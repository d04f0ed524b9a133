// Package background fetches backdrop photos from the configured image
// source API, with a short-lived search cache and the download-tracking
// call the provider's terms require.
package background

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Photo is a single image source result.
type Photo struct {
	ID             string    `json:"id"`
	Description    string    `json:"description"`
	AltDescription string    `json:"alt_description"`
	URLs           PhotoURLs `json:"urls"`
	User           Author    `json:"user"`
}

// PhotoURLs carries the size variants the source serves for a photo.
type PhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// Author identifies the photographer for attribution.
type Author struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Category is a curated backdrop theme mapped to a search query.
type Category struct {
	ID          string
	Name        string
	Query       string
	Description string
}

// Categories is the built-in backdrop catalogue.
var Categories = []Category{
	{ID: "nature", Name: "Nature", Query: "nature,landscape,peaceful,serene", Description: "Peaceful natural landscapes"},
	{ID: "forest", Name: "Forest", Query: "forest,trees,woodland,peaceful", Description: "Calming forest scenes"},
	{ID: "mountains", Name: "Mountains", Query: "mountains,peaks,scenic,majestic", Description: "Majestic mountain views"},
	{ID: "ocean", Name: "Ocean", Query: "ocean,sea,waves,calm,blue", Description: "Tranquil ocean scenes"},
	{ID: "minimal", Name: "Minimal", Query: "minimal,clean,simple,geometric", Description: "Clean minimal designs"},
	{ID: "sunset", Name: "Sunset", Query: "sunset,golden hour,warm,peaceful", Description: "Warm sunset scenes"},
}

// CategoryByID looks up a catalogue entry.
func CategoryByID(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

const (
	defaultPerPage = 20
	cacheTTL       = time.Hour

	attributionBase = "https://unsplash.com"
)

type cachedSearch struct {
	photos  []Photo
	fetched time.Time
}

// Client talks to the image source API.
type Client struct {
	baseURL   string
	accessKey string
	http      *http.Client
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSearch
}

// NewClient builds a client for the image source at baseURL.
func NewClient(baseURL, accessKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		accessKey: accessKey,
		http:      &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
		cache:     make(map[string]cachedSearch),
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("image source url: %w", err)
	}
	q := u.Query()
	q.Set("client_id", c.accessKey)
	q.Set("orientation", "landscape")
	q.Set("per_page", strconv.Itoa(defaultPerPage))
	for key, vals := range params {
		q.Set(key, vals[0])
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("image source request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("image source fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image source: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("image source decode: %w", err)
	}
	return nil
}

// SearchPhotos queries the source for a page of results. Results are
// cached per query and page for an hour.
func (c *Client) SearchPhotos(ctx context.Context, query string, page int) ([]Photo, error) {
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("search_%s_%d", query, page)

	c.mu.Lock()
	if hit, ok := c.cache[key]; ok && c.now().Sub(hit.fetched) < cacheTTL {
		photos := hit.photos
		c.mu.Unlock()
		return photos, nil
	}
	c.mu.Unlock()

	var data struct {
		Results []Photo `json:"results"`
	}
	params := url.Values{
		"query":    {query},
		"page":     {strconv.Itoa(page)},
		"order_by": {"relevant"},
	}
	if err := c.get(ctx, "/search/photos", params, &data); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cachedSearch{photos: data.Results, fetched: c.now()}
	c.mu.Unlock()
	return data.Results, nil
}

// PhotosForCategory searches using the category's canned query.
func (c *Client) PhotosForCategory(ctx context.Context, cat Category) ([]Photo, error) {
	return c.SearchPhotos(ctx, cat.Query, 1)
}

// RandomPhoto fetches a single random photo matching query. The source
// answers the count parameter with an array, so both shapes are
// accepted.
func (c *Client) RandomPhoto(ctx context.Context, query string) (Photo, error) {
	var raw json.RawMessage
	params := url.Values{
		"query": {query},
		"count": {"1"},
	}
	if err := c.get(ctx, "/photos/random", params, &raw); err != nil {
		return Photo{}, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var photos []Photo
		if err := json.Unmarshal(trimmed, &photos); err != nil {
			return Photo{}, fmt.Errorf("image source decode: %w", err)
		}
		if len(photos) == 0 {
			return Photo{}, fmt.Errorf("image source: empty random result")
		}
		return photos[0], nil
	}

	var photo Photo
	if err := json.Unmarshal(trimmed, &photo); err != nil {
		return Photo{}, fmt.Errorf("image source decode: %w", err)
	}
	return photo, nil
}

// TrackDownload reports that a photo was displayed. The provider's API
// terms require this call whenever an image is put on screen.
func (c *Client) TrackDownload(ctx context.Context, p Photo) error {
	var ack struct {
		URL string `json:"url"`
	}
	return c.get(ctx, "/photos/"+p.ID+"/download", nil, &ack)
}

// OptimizedURL derives a crop of the raw asset sized for the display.
func (c *Client) OptimizedURL(p Photo, width, height int) string {
	return fmt.Sprintf("%s&w=%d&h=%d&fit=crop&crop=entropy&auto=format&q=80", p.URLs.Raw, width, height)
}

// AttributionURL links back to the photographer as the provider's
// guidelines ask.
func (c *Client) AttributionURL(p Photo) string {
	return fmt.Sprintf("%s/@%s?utm_source=grove&utm_medium=referral", attributionBase, p.User.Username)
}
