// Package geocode looks up place suggestions for the trip and stop forms
// from a Mapbox-compatible geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tripboard/tripboard/internal/domain"
)

// MinQueryLength is the shortest trimmed query that is sent.
const MinQueryLength = 2

// ErrNoToken is returned when no access token is configured.
var ErrNoToken = errors.New("geocode: no access token configured")

// Client queries the geocoder. Suggestions are hints only.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every lookup.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for baseURL (e.g. https://api.mapbox.com).
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string `json:"id"`
	PlaceName string `json:"place_name"`
	Text      string `json:"text"`
	Geometry  struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

func (f feature) toDomain() domain.Place {
	p := domain.Place{ID: f.ID, Name: f.PlaceName, ShortName: f.Text}
	if len(f.Geometry.Coordinates) >= 2 {
		p.Coordinates = domain.Coordinates{Lng: f.Geometry.Coordinates[0], Lat: f.Geometry.Coordinates[1]}
	}
	return p
}

// Search returns up to five places and regions matching query. A query
// shorter than MinQueryLength after trimming yields no suggestions and no
// request.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Place, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil, nil
	}
	if c.token == "" {
		return nil, fmt.Errorf("geocode.Client.Search: %w", ErrNoToken)
	}

	q := url.Values{}
	q.Set("access_token", c.token)
	q.Set("limit", "5")
	q.Set("types", "place,region")
	u := c.baseURL + "/geocoding/v5/mapbox.places/" + url.PathEscape(query) + ".json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode.Client.Search: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "geocode lookup failed", "error", err)
		return nil, fmt.Errorf("geocode.Client.Search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode.Client.Search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("geocode.Client.Search: decode: %w", err)
	}
	places := make([]domain.Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		places = append(places, f.toDomain())
	}
	return places, nil
}
