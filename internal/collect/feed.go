package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

const defaultMaxEntries = 20

// Custom item keys filled by sourceTranslator.
const (
	customSourceURL   = "source_url"
	customSourceTitle = "source_title"
)

// GoogleNewsClient searches the Google News RSS feed.
type GoogleNewsClient struct {
	baseURL    string
	region     Region
	maxEntries int
	parser     *gofeed.Parser
}

// NewGoogleNewsClient creates a client localised to region.
func NewGoogleNewsClient(baseURL string, region Region, maxEntries int, userAgent string, timeout time.Duration) *GoogleNewsClient {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	parser := gofeed.NewParser()
	parser.RSSTranslator = &sourceTranslator{}
	parser.Client = &http.Client{Timeout: timeout}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}

	return &GoogleNewsClient{
		baseURL:    baseURL,
		region:     region,
		maxEntries: maxEntries,
		parser:     parser,
	}
}

// FeedURL returns the search feed URL for a query.
func (c *GoogleNewsClient) FeedURL(query string) string {
	params := url.Values{
		"q":    {query},
		"hl":   {c.region.HL()},
		"gl":   {c.region.Country},
		"ceid": {c.region.CEID()},
	}
	return c.baseURL + "?" + params.Encode()
}

// Search returns the first entries of the feed. The record limit of q
// caps the result when it is smaller than the client's maximum.
func (c *GoogleNewsClient) Search(ctx context.Context, q curate.Query) []curate.Article {
	logger := log.WithField("query", q.Expression)

	feed, err := c.parser.ParseURLWithContext(c.FeedURL(q.Expression), ctx)
	if err != nil {
		logger.Warnf("Failed to parse Google News feed: %v", err)
		return nil
	}

	limit := c.maxEntries
	if q.MaxRecords > 0 && q.MaxRecords < limit {
		limit = q.MaxRecords
	}

	var articles []curate.Article
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}
		if a, ok := parseItem(item); ok {
			articles = append(articles, a)
		}
	}

	logger.Debugf("Parsed %d entries from Google News", len(articles))
	return articles
}

// sourceTranslator keeps the RSS <source url="..."> element, which the
// default translator drops. Google News links all point at news.google.com,
// so the source is the only record of the publisher.
type sourceTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *sourceTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	rssFeed, ok := feed.(*rss.Feed)
	if !ok {
		return nil, fmt.Errorf("feed did not match expected type of *rss.Feed")
	}

	result, err := t.DefaultRSSTranslator.Translate(rssFeed)
	if err != nil {
		return nil, err
	}

	for i, item := range rssFeed.Items {
		if i >= len(result.Items) || item.Source == nil {
			continue
		}
		out := result.Items[i]
		if out.Custom == nil {
			out.Custom = map[string]string{}
		}
		out.Custom[customSourceURL] = strings.TrimSpace(item.Source.URL)
		out.Custom[customSourceTitle] = strings.TrimSpace(item.Source.Title)
	}
	return result, nil
}

func parseItem(item *gofeed.Item) (curate.Article, bool) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = strings.TrimSpace(item.GUID)
	}
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return curate.Article{}, false
	}

	title, source := splitSource(title)
	if s := item.Custom[customSourceTitle]; s != "" {
		source = s
	}

	var seen time.Time
	if item.PublishedParsed != nil {
		seen = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		seen = *item.UpdatedParsed
	}

	return curate.Article{
		Title:     title,
		Link:      link,
		Source:    source,
		SourceURL: item.Custom[customSourceURL],
		SeenAt:    seen,
		Summary:   plainText(item.Description),
	}, true
}

// plainText strips the markup Google News wraps around item descriptions.
func plainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// splitSource separates the trailing " - Publisher" Google News appends to
// every headline.
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}
