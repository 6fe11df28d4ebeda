package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/wordcrawl/internal/pattern"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "wordcrawl/1.0 (+https://github.com/nao1215/wordcrawl)"
)

// HTMLParser is the PageParser for HTML documents.
type HTMLParser struct {
	// client performs the requests. It must not be nil.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits the number of body bytes read per page.
	maxBodySize int64

	// ignoredWords are full-match patterns; matching words are not counted.
	ignoredWords []*regexp.Regexp

	logger *slog.Logger
}

// HTMLParserOption configures an HTMLParser.
type HTMLParserOption func(*HTMLParser)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTMLParserOption {
	return func(p *HTMLParser) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) HTMLParserOption {
	return func(p *HTMLParser) {
		if size > 0 {
			p.maxBodySize = size
		}
	}
}

// WithIgnoredWords drops every word matching one of patterns, which must come
// from pattern.Compile. Words are matched after lower-casing.
func WithIgnoredWords(patterns []*regexp.Regexp) HTMLParserOption {
	return func(p *HTMLParser) {
		p.ignoredWords = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTMLParserOption {
	return func(p *HTMLParser) {
		p.logger = logger
	}
}

// NewHTMLParser creates an HTMLParser that fetches through client.
func NewHTMLParser(client *http.Client, opts ...HTMLParserOption) *HTMLParser {
	p := &HTMLParser{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse fetches pageURL and extracts its words and links.
// Responses that are not HTML produce an empty Result.
func (p *HTMLParser) Parse(ctx context.Context, pageURL string) (*Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, pageURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		p.logger.Debug("skipping non-HTML content", "url", pageURL, "contentType", contentType)
		return &Result{WordCounts: map[string]int{}, Links: []string{}}, nil
	}

	root, err := html.Parse(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, template").Remove()

	result := &Result{
		WordCounts: p.countWords(doc.Find("body").Text()),
		Links:      extractLinks(doc, base),
	}

	p.logger.Debug("parsed page",
		"url", pageURL,
		"status", resp.StatusCode,
		"words", len(result.WordCounts),
		"links", len(result.Links),
	)

	return result, nil
}

// countWords splits text on anything that is not a letter or digit,
// lower-cases each word and tallies the ones that are not ignored.
func (p *HTMLParser) countWords(text string) map[string]int {
	// cases.Caser keeps state and must not be shared between goroutines.
	caser := cases.Lower(language.Und)

	counts := make(map[string]int)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		w = caser.String(w)
		if pattern.MatchAny(p.ignoredWords, w) {
			continue
		}
		counts[w]++
	}
	return counts
}

// extractLinks resolves every anchor href against base.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link := resolveLink(base, href); link != "" {
			links = append(links, link)
		}
	})
	return links
}

// resolveLink converts a raw href into an absolute URL.
// It returns "" for fragments, non-navigational schemes and unparsable values.
// A file: link is kept only when base is itself a file: page, so remote
// pages cannot point the crawler at the local disk.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	switch strings.ToLower(resolved.Scheme) {
	case "http", "https":
	case "file":
		if !strings.EqualFold(base.Scheme, "file") {
			return ""
		}
	default:
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
