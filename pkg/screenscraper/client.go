package screenscraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultBaseURL  = "https://api.screenscraper.fr/api2"
	defaultSoftName = "PSXPackagerPlus"

	// systemPlayStation is ScreenScraper's system id for the PlayStation.
	systemPlayStation = "57"
)

// Client is a ScreenScraper API v2 client.
// It is safe for concurrent use.
type Client struct {
	devID       string
	devPassword string
	softName    string
	ssID        string
	ssPassword  string
	baseURL     string
	httpClient  *http.Client
	log         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "screenscraper")
	}
}

// WithSoftName overrides the software name reported to the API.
func WithSoftName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.softName = name
		}
	}
}

// WithUserCredentials sets the optional end-user account used for
// higher request quotas.
func WithUserCredentials(ssid, password string) Option {
	return func(c *Client) {
		c.ssID = ssid
		c.ssPassword = password
	}
}

// New creates a new ScreenScraper client.
func New(devID, devPassword string, opts ...Option) *Client {
	c := &Client{
		devID:       devID,
		devPassword: devPassword,
		softName:    defaultSoftName,
		baseURL:     defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether developer credentials are set.
func (c *Client) Configured() bool {
	return c.devID != "" && c.devPassword != ""
}

// Lookup fetches game information for a disc image.
// It returns nil, nil when the catalog has no matching game.
func (c *Client) Lookup(ctx context.Context, q Query) (*GameInfo, error) {
	if !c.Configured() {
		return nil, ErrMissingCredentials
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jeuInfos.php?"+c.params(q).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RetrievalError{Err: fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("read body: %w", err)}
	}

	info, err := parseGameInfo(body)
	if err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debug("lookup completed", "rom", q.FileName, "found", info != nil, "duration_ms", time.Since(start).Milliseconds())
	}

	return info, nil
}

// params builds the jeuInfos.php query. Optional fields are omitted when empty.
func (c *Client) params(q Query) url.Values {
	v := url.Values{}
	v.Set("devid", c.devID)
	v.Set("devpassword", c.devPassword)
	v.Set("softname", c.softName)
	v.Set("output", "xml")
	v.Set("systemeid", systemPlayStation)
	v.Set("romtype", "iso")
	v.Set("romnom", filepath.Base(q.FileName))
	v.Set("romsize", strconv.FormatInt(q.Size, 10))

	optional := []struct{ key, value string }{
		{"ssid", c.ssID},
		{"sspassword", c.ssPassword},
		{"crc", q.CRC32},
		{"md5", q.MD5},
		{"sha1", q.SHA1},
	}
	for _, o := range optional {
		if o.value != "" {
			v.Set(o.key, o.value)
		}
	}
	return v
}

func parseGameInfo(body []byte) (*GameInfo, error) {
	var doc dataResponse
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if doc.Game == nil {
		return nil, nil
	}

	g := doc.Game
	return &GameInfo{
		ID:          g.ID,
		Name:        byRegion(g.Names),
		Synopsis:    byLanguage(g.Synopses),
		Publisher:   g.Publisher,
		Developer:   g.Developer,
		Players:     g.Players,
		Rating:      g.Rating,
		ReleaseDate: byRegion(g.Dates),
		Genres:      englishGenres(g.Genres),
		Media:       mediaSet(g.Media),
	}, nil
}

// byRegion picks the us entry, then jp, then the first one.
func byRegion(values []taggedValue) string {
	for _, region := range []string{"us", "jp"} {
		for _, v := range values {
			if v.Region == region {
				return v.Value
			}
		}
	}
	if len(values) > 0 {
		return values[0].Value
	}
	return ""
}

// byLanguage picks the en entry, then the first one.
func byLanguage(values []taggedValue) string {
	for _, v := range values {
		if v.Language == "en" {
			return v.Value
		}
	}
	if len(values) > 0 {
		return values[0].Value
	}
	return ""
}

// englishGenres keeps genres tagged en or untagged, in source order.
func englishGenres(values []taggedValue) []string {
	genres := []string{}
	for _, v := range values {
		if v.Language == "en" || v.Language == "" {
			genres = append(genres, v.Value)
		}
	}
	return genres
}

func mediaSet(media []mediaElement) MediaSet {
	var m MediaSet
	for _, e := range media {
		switch e.Type {
		case "ss":
			m.Screenshot = e.URL
		case "fanart":
			m.Fanart = e.URL
		case "video":
			m.Video = e.URL
		case "screenmarquee":
			m.Marquee = e.URL
		case "wheel-hd":
			setRegional(e, &m.WheelUS, &m.WheelJP)
		case "box-texture":
			setRegional(e, &m.BoxTextureUS, &m.BoxTextureJP)
		case "box-2D":
			// First match per region wins so the icon is stable.
			if e.Region == "us" && m.Box2DUS == "" {
				m.Box2DUS = e.URL
			} else if e.Region == "jp" && m.Box2DJP == "" {
				m.Box2DJP = e.URL
			}
		case "box-3D":
			setRegional(e, &m.Box3DUS, &m.Box3DJP)
		}
	}

	m.Icon0URL = firstNonEmpty(m.Box2DUS, m.Box2DJP)
	return m
}

func setRegional(e mediaElement, us, jp *string) {
	switch e.Region {
	case "us":
		*us = e.URL
	case "jp":
		*jp = e.URL
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
