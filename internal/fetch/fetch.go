// Package fetch provides URL fetching and HTML-to-text processing for
// factory descriptions published as web pages (wikis, runbooks, shop-floor docs).
package fetch

import (
	"context"
	"fmt"
	stdhtml "html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Defaults for Options fields left zero.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; FactoryOnboarding/1.0)"
	DefaultMaxBytes  = 2 << 20
)

// Result is one fetched page. Body holds at most Options.MaxBytes; Truncated
// is set when the server had more to send.
type Result struct {
	URL         string
	FinalURL    string
	Body        string
	ContentType string
	StatusCode  int
	Truncated   bool
}

// Error reports a failed fetch of URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := "fetch " + e.URL + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Options configures URL. A nil *Options means DefaultOptions.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	Headers   map[string]string
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

func (o *Options) withDefaults() Options {
	out := *DefaultOptions()
	if o == nil {
		return out
	}
	out.Headers = o.Headers
	out.Client = o.Client
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		out.UserAgent = o.UserAgent
	}
	if o.MaxBytes > 0 {
		out.MaxBytes = o.MaxBytes
	}
	return out
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return &Error{URL: raw, Message: "invalid URL", Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &Error{URL: raw, Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &Error{URL: raw, Message: "invalid URL: missing host"}
	}
	return nil
}

// URL GETs rawURL. A non-200 answer returns both the Result and an *Error so
// callers can still inspect the body.
func URL(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}
	o := opts.withDefaults()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "build request", Cause: err}
	}
	req.Header.Set("User-Agent", o.UserAgent)
	req.Header.Set("Accept", "text/html, text/plain;q=0.9, */*;q=0.5")
	for key, value := range o.Headers {
		req.Header.Set(key, value)
	}

	client := o.Client
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	// One extra byte tells a body of exactly MaxBytes from a longer one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, o.MaxBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "read body", Cause: err}
	}
	truncated := int64(len(body)) > o.MaxBytes
	if truncated {
		body = body[:o.MaxBytes]
	}

	result := &Result{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Truncated:   truncated,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return result, nil
}

// IsHTML reports whether the result looks like an HTML document rather than plain text.
func (r *Result) IsHTML() bool {
	if strings.Contains(r.ContentType, "html") {
		return true
	}
	if r.ContentType != "" {
		return false
	}
	head := strings.ToLower(strings.TrimSpace(r.Body))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
// Table rows are flattened to one "cell | cell" line each so routings stay readable.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()

	if len(noiseSelectors) > 0 {
		if noiseSelector := strings.Join(noiseSelectors, ", "); noiseSelector != "" {
			doc.Find(noiseSelector).Remove()
		}
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	flattenTables(mainContent)
	mainContent.Find("br").ReplaceWithHtml("\n")
	mainContent.Find("p, li, h1, h2, h3, h4, h5, h6, div, pre").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(mainContent.Text()), nil
}

// flattenTables replaces each table with one text line per row
func flattenTables(root *goquery.Selection) {
	root.Find("table").Each(func(_ int, table *goquery.Selection) {
		var lines []string
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
			})
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " | "))
			}
		})
		var sb strings.Builder
		for _, line := range lines {
			sb.WriteString("<p>" + stdhtml.EscapeString(line) + "</p>")
		}
		table.ReplaceWithHtml(sb.String())
	})
}

// DefaultTextSelectors returns standard selectors for documentation pages.
func DefaultTextSelectors() []string {
	return []string{
		"main",
		"article",
		".markdown-body",
		".wiki-content",
		"#main-content",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line and drops blank ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
