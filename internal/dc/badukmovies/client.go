package badukmovies

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/italolelis/baduk_downloader/internal/logctx"
	"github.com/italolelis/baduk_downloader/internal/telemetry"
	"github.com/italolelis/baduk_downloader/internal/transfer"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://badukmovies.com"

	loginPath     = "/users/sign_in"
	dashboardPath = "/dashboard"

	fieldEmail    = "user[email]"
	fieldPassword = "user[password]"
	fieldToken    = "authenticity_token"
)

var invalidCredentialsRe = regexp.MustCompile(`(?i)Invalid email or password`)

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	// RequestInterval is the minimum spacing between two requests. Zero disables pacing.
	RequestInterval time.Duration
	Telemetry       *telemetry.Telemetry
	// Transport overrides the base round tripper, mostly for tests.
	Transport http.RoundTripper
}

// Client holds the authenticated session with the site. Every request made
// through HTTPClient shares its cookies.
type Client struct {
	BaseURL    string
	httpClient *http.Client
	telemetry  *telemetry.Telemetry
}

var _ transfer.ResourceExtractor = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var limiter *rate.Limiter
	if opts.RequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RequestInterval), 1)
	}

	return &Client{
		BaseURL: baseURL,
		// No client timeout; requests are bounded by their context.
		httpClient: &http.Client{
			Jar: jar,
			Transport: otelhttp.NewTransport(&sessionTransport{
				next:      base,
				limiter:   limiter,
				userAgent: opts.UserAgent,
			}),
		},
		telemetry: opts.Telemetry,
	}, nil
}

// HTTPClient returns the client carrying the session cookies.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Authenticate logs in and returns the dashboard page.
func (c *Client) Authenticate(ctx context.Context, email, password string) ([]byte, error) {
	logger := logctx.LoggerFromContext(ctx).With("method", "auth.login")

	err := c.telemetry.InstrumentClientOperation(ctx, "login", func(ctx context.Context) error {
		token, err := c.loginToken(ctx)
		if err != nil {
			return err
		}

		form := url.Values{}
		form.Set(fieldEmail, email)
		form.Set(fieldPassword, password)
		form.Set(fieldToken, token)

		logger.DebugContext(ctx, "submitting login form")

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+loginPath, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create login request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &transfer.FetchError{URL: req.URL.String(), Err: err}
		}
		defer resp.Body.Close()

		// The site answers a failed login with a regular page, so the status code says nothing.
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &transfer.FetchError{URL: req.URL.String(), Err: err}
		}

		if invalidCredentialsRe.Match(body) {
			return &transfer.AuthenticationError{Operation: "login", Reason: "invalid email or password"}
		}

		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "login failed", "err", err)

		return nil, err
	}

	logger.DebugContext(ctx, "success")

	return c.FetchPage(ctx, c.BaseURL+dashboardPath)
}

func (c *Client) loginToken(ctx context.Context) (string, error) {
	page, err := c.FetchPage(ctx, c.BaseURL+loginPath)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", &transfer.AuthenticationError{Operation: "login_form", Reason: "login page is not valid HTML", Err: err}
	}

	token, ok := doc.Find(fmt.Sprintf(`input[name=%q]`, fieldToken)).First().Attr("value")
	if !ok || token == "" {
		return "", &transfer.AuthenticationError{Operation: "login_form", Reason: "authenticity token not found on login page"}
	}

	return token, nil
}

// FetchPage retrieves a page with the session cookies.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	logger := logctx.LoggerFromContext(ctx)

	var page []byte

	err := c.telemetry.InstrumentClientOperation(ctx, "fetch_page", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return &transfer.FetchError{URL: pageURL, Err: err}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &transfer.FetchError{URL: pageURL, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &transfer.FetchError{URL: pageURL, StatusCode: resp.StatusCode}
		}

		page, err = io.ReadAll(resp.Body)
		if err != nil {
			return &transfer.FetchError{URL: pageURL, Err: err}
		}

		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch page", "url", pageURL, "err", err)

		return nil, err
	}

	logger.DebugContext(ctx, "fetched page", "url", pageURL, "bytes", len(page))

	return page, nil
}

// ExtractResources fetches an episode page and lists its downloadable files.
func (c *Client) ExtractResources(ctx context.Context, episodeURL string) ([]transfer.Resource, error) {
	page, err := c.FetchPage(ctx, episodeURL)
	if err != nil {
		return nil, err
	}

	return ParseResources(c.BaseURL, episodeURL, page)
}

// Episodes parses the dashboard returned by Authenticate.
func (c *Client) Episodes(dashboard []byte) ([]transfer.Episode, error) {
	return ParseEpisodes(c.BaseURL, dashboard)
}

// sessionTransport paces requests and sets the shared headers.
type sessionTransport struct {
	next      http.RoundTripper
	limiter   *rate.Limiter
	userAgent string
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	return t.next.RoundTrip(req)
}
