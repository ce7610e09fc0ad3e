package edgar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTickersURL     = "https://www.sec.gov/include/ticker.txt"
	defaultSubmissionsURL = "https://data.sec.gov/submissions"
	defaultArchivesURL    = "https://www.sec.gov/Archives/edgar/data"
)

// Identity names the application making requests. SEC asks every client to
// identify itself with a name and a contact address.
type Identity struct {
	Name  string
	Email string
}

// UserAgent returns the identifying header value, "{name} ({email})"
func (i Identity) UserAgent() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Email)
}

// Client is a http client for interacting with EDGAR
type Client struct {
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	tickers     *TickerIndex

	tickersURL     string
	submissionsURL string
	archivesURL    string
}

// ClientOption allows for customization of the client
type ClientOption func(*Client)

// NewClient creates a new EDGAR client
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		userAgent:      Identity{Name: "edgar-mcp", Email: "test@test.com"}.UserAgent(),
		rateLimiter:    rate.NewLimiter(rate.Inf, 0),
		logger:         slog.Default(),
		tickers:        defaultTickerIndex,
		tickersURL:     defaultTickersURL,
		submissionsURL: defaultSubmissionsURL,
		archivesURL:    defaultArchivesURL,
	}

	for _, option := range options {
		option(client)
	}
	return client
}

// WithHTTPClient allows custom HTTP client configuration
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets a custom user agent string
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithIdentity sets the user agent from an application identity
func WithIdentity(identity Identity) ClientOption {
	return WithUserAgent(identity.UserAgent())
}

// WithRateLimit paces outgoing requests to perSecond. Zero or a negative
// value disables pacing, which is the default.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTickerIndex replaces the process-wide ticker index
func WithTickerIndex(index *TickerIndex) ClientOption {
	return func(c *Client) {
		c.tickers = index
	}
}

// WithTickersURL overrides the location of the ticker reference list
func WithTickersURL(url string) ClientOption {
	return func(c *Client) {
		c.tickersURL = url
	}
}

// WithSubmissionsBaseURL overrides the base location of the submissions feed
func WithSubmissionsBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.submissionsURL = strings.TrimSuffix(url, "/")
	}
}

// WithArchivesBaseURL overrides the base location of filing documents
func WithArchivesBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.archivesURL = strings.TrimSuffix(url, "/")
	}
}

// ArchivesBaseURL returns the base location of filing documents
func (c *Client) ArchivesBaseURL() string {
	return c.archivesURL
}

// FileContents retrieves the contents of a file at the specified URL
func (c *Client) FileContents(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("edgar request", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Body: body}
	}

	return resp, nil
}
