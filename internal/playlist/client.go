// Package playlist fetches the track catalog from a blob container.
// The container lists its contents as XML; audio files grouped by top
// level folder become playlists.
package playlist

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/evrenbey/grove/internal/domain"
)

// audioExtensions are the formats worth surfacing; anything else in the
// container is ignored.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
}

// listing mirrors the container's enumeration XML.
type listing struct {
	XMLName xml.Name `xml:"EnumerationResults"`
	Blobs   struct {
		Blob []blobItem `xml:"Blob"`
	} `xml:"Blobs"`
}

type blobItem struct {
	Name       string `xml:"Name"`
	Properties struct {
		LastModified  string `xml:"Last-Modified"`
		ContentLength int64  `xml:"Content-Length"`
		ContentType   string `xml:"Content-Type"`
	} `xml:"Properties"`
}

const (
	maxFetchAttempts = 4
	baseRetryDelay   = time.Second
	maxRetryDelay    = 30 * time.Second
)

// Client lists the container and shapes its contents into playlists.
type Client struct {
	baseURL   string
	sasToken  string
	http      *http.Client
	retryBase time.Duration
}

func NewClient(baseURL, sasToken string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sasToken:  sasToken,
		http:      &http.Client{Timeout: 30 * time.Second},
		retryBase: baseRetryDelay,
	}
}

func (c *Client) signedURL(blobPath string) string {
	u := c.baseURL
	if blobPath != "" {
		u += "/" + blobPath
	}
	if c.sasToken != "" {
		u += "?" + c.sasToken
	}
	return u
}

func (c *Client) listURL() string {
	u := c.signedURL("")
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "restype=container&comp=list"
}

// ListTracks enumerates the container and returns its audio blobs.
// Transient failures are retried with exponential backoff up to a
// bounded attempt count.
func (c *Client) ListTracks(ctx context.Context) ([]domain.Track, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retryBase << (attempt - 1)
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		tracks, err := c.fetchOnce(ctx)
		if err == nil {
			return tracks, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("list tracks after %d attempts: %w", maxFetchAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) ([]domain.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch blob listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch blob listing: unexpected status %s", resp.Status)
	}

	var parsed listing
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse blob listing: %w", err)
	}

	var tracks []domain.Track
	for _, blob := range parsed.Blobs.Blob {
		if !isAudioFile(blob.Name) {
			continue
		}
		tracks = append(tracks, domain.Track{
			ID:    blob.Name,
			Title: trackTitle(blob.Name),
			URL:   c.signedURL(blob.Name),
		})
	}
	return tracks, nil
}

// FetchPlaylists lists the container and groups tracks by top-level
// folder, one playlist per folder. Root-level files land in a
// "General" playlist. Both playlists and their tracks sort by name, so
// repeated fetches produce identical collections.
func (c *Client) FetchPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	tracks, err := c.ListTracks(ctx)
	if err != nil {
		return nil, err
	}

	byFolder := make(map[string][]domain.Track)
	for _, t := range tracks {
		folder := "root"
		if i := strings.IndexByte(t.ID, '/'); i > 0 {
			folder = t.ID[:i]
		}
		byFolder[folder] = append(byFolder[folder], t)
	}

	playlists := make([]domain.Playlist, 0, len(byFolder))
	for folder, ts := range byFolder {
		sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
		playlists = append(playlists, domain.Playlist{
			ID:       folder,
			Name:     HumanizeFolder(folder),
			Tracks:   ts,
			Category: folder,
		})
	}
	sort.Slice(playlists, func(i, j int) bool { return playlists[i].Name < playlists[j].Name })
	return playlists, nil
}

func isAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(path.Ext(name))]
}

func trackTitle(blobName string) string {
	base := path.Base(blobName)
	return strings.TrimSuffix(base, path.Ext(base))
}

// HumanizeFolder turns a kebab-case or snake_case folder name into
// Title Case; the root pseudo-folder reads as "General".
func HumanizeFolder(folder string) string {
	if folder == "root" {
		return "General"
	}
	words := strings.FieldsFunc(folder, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
