package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

const gdeltTimeLayout = "20060102150405"

// GDELTClient searches the GDELT DOC 2.0 article list API.
type GDELTClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// NewGDELTClient creates a new GDELT client.
func NewGDELTClient(baseURL, userAgent string, timeout time.Duration) *GDELTClient {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &GDELTClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

// Search fetches articles seen in the last q.Hours hours.
func (c *GDELTClient) Search(ctx context.Context, q curate.Query) []curate.Article {
	now := c.now().UTC()
	start := now.Add(-time.Duration(q.Hours) * time.Hour)

	params := url.Values{
		"query":         {q.Expression},
		"mode":          {"ArtList"},
		"format":        {"json"},
		"maxrecords":    {fmt.Sprintf("%d", q.MaxRecords)},
		"sort":          {"hybridrel"},
		"startdatetime": {start.Format(gdeltTimeLayout)},
		"enddatetime":   {now.Format(gdeltTimeLayout)},
	}

	logger := log.WithField("query", q.Expression)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		logger.Warnf("GDELT request error: %v", err)
		return nil
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warnf("GDELT error: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warnf("GDELT HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		Articles []struct {
			URL       string `json:"url"`
			URLMobile string `json:"url_mobile"`
			Title     string `json:"title"`
			SeenDate  string `json:"seendate"`
			Domain    string `json:"domain"`
		} `json:"articles"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Warnf("GDELT decode error: %v", err)
		return nil
	}

	var articles []curate.Article
	for _, a := range result.Articles {
		title := strings.TrimSpace(a.Title)
		link := strings.TrimSpace(a.URL)
		mobile := strings.TrimSpace(a.URLMobile)
		if title == "" || (link == "" && mobile == "") {
			continue
		}

		var seen time.Time
		if a.SeenDate != "" {
			if t, err := time.Parse("20060102T150405Z", a.SeenDate); err == nil {
				seen = t
			}
		}

		articles = append(articles, curate.Article{
			Title:  title,
			URL:    link,
			Link:   mobile,
			Source: a.Domain,
			SeenAt: seen,
		})
	}

	logger.Debugf("Fetched %d articles from GDELT", len(articles))
	return articles
}
