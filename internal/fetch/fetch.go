// Package fetch extracts short summaries from article pages.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	log "github.com/sirupsen/logrus"
)

const (
	// minParagraphRunes is the shortest paragraph considered article prose.
	minParagraphRunes = 80
	maxBodyBytes      = 5 << 20
)

// Summarizer returns a short plain-text summary of the page at url, or ""
// when nothing usable could be extracted.
type Summarizer interface {
	Summarize(ctx context.Context, articleURL string) string
}

// Waiter paces outbound requests.
type Waiter interface {
	Wait(ctx context.Context) error
}

// ContentFetcher fetches article pages and keeps their first long paragraphs.
type ContentFetcher struct {
	client        *http.Client
	userAgent     string
	maxParagraphs int
	failedDomains map[string]struct{}
	pacer         Waiter
}

// NewContentFetcher creates a new content fetcher.
func NewContentFetcher(timeout time.Duration, userAgent string) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ContentFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:     userAgent,
		maxParagraphs: 2,
		failedDomains: make(map[string]struct{}),
	}
}

// SetPacer makes every page request wait on w first.
func (f *ContentFetcher) SetPacer(w Waiter) {
	f.pacer = w
}

// Summarize joins the first two paragraphs longer than 80 characters.
// After an HTTP error from a domain, later URLs on that domain are skipped.
func (f *ContentFetcher) Summarize(ctx context.Context, articleURL string) string {
	u, err := url.Parse(articleURL)
	if err != nil || u.Host == "" {
		return ""
	}
	domain := strings.ToLower(u.Host)

	if _, failed := f.failedDomains[domain]; failed {
		return ""
	}
	if f.pacer != nil {
		if err := f.pacer.Wait(ctx); err != nil {
			return ""
		}
	}

	body, httpErr := f.fetchPage(ctx, articleURL)
	if httpErr != nil {
		f.failedDomains[domain] = struct{}{}
		log.WithField("domain", domain).Warnf("HTTP error for %s, skipping remaining from domain", articleURL)
		return ""
	}
	if len(body) == 0 {
		return ""
	}

	paras := mainParagraphs(body, u)
	if len(paras) == 0 {
		log.Debugf("No extractable content from: %s", articleURL)
		return ""
	}
	if len(paras) > f.maxParagraphs {
		paras = paras[:f.maxParagraphs]
	}
	return strings.Join(paras, " ")
}

func (f *ContentFetcher) fetchPage(ctx context.Context, articleURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, nil
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil
	}
	return body, nil
}

// mainParagraphs prefers the readability main-content block and falls back
// to every paragraph on the page.
func mainParagraphs(page []byte, pageURL *url.URL) []string {
	if article, err := readability.FromReader(bytes.NewReader(page), pageURL); err == nil && article.Content != "" {
		if paras := longParagraphs(strings.NewReader(article.Content)); len(paras) > 0 {
			return paras
		}
	}
	return longParagraphs(bytes.NewReader(page))
}

func longParagraphs(r io.Reader) []string {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil
	}

	var out []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if utf8.RuneCountInString(text) > minParagraphRunes {
			out = append(out, text)
		}
	})
	return out
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
