package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TobiSchelling/TennisDigest/internal/config"
	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

const gdeltResponse = `{"articles": [
	{"url": "https://www.bbc.co.uk/sport/tennis/1", "url_mobile": "", "title": " Sinner into the final ", "seendate": "20260214T103000Z", "domain": "bbc.co.uk"},
	{"url": "", "url_mobile": "https://m.espn.com/tennis/2", "title": "Mobile only", "seendate": "", "domain": "espn.com"},
	{"url": "https://www.reuters.com/3", "title": "", "seendate": "bad", "domain": "reuters.com"},
	{"url": "", "title": "No link at all"}
]}`

func newGDELTTestClient(srv *httptest.Server) *GDELTClient {
	c := NewGDELTClient(srv.URL, "TestAgent/1.0", 2*time.Second)
	c.now = func() time.Time { return time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestGDELTSearch(t *testing.T) {
	var got map[string]string
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		agent = r.Header.Get("User-Agent")
		fmt.Fprint(w, gdeltResponse)
	}))
	defer srv.Close()

	c := newGDELTTestClient(srv)
	articles := c.Search(context.Background(), curate.Query{Expression: "tennis AND Wimbledon", MaxRecords: 25, Hours: 48})

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Sinner into the final" {
		t.Errorf("expected trimmed title, got %q", articles[0].Title)
	}
	if articles[0].Source != "bbc.co.uk" {
		t.Errorf("expected source bbc.co.uk, got %q", articles[0].Source)
	}
	if !articles[0].SeenAt.Equal(time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected seen date %v", articles[0].SeenAt)
	}
	if articles[1].Identity() != "https://m.espn.com/tennis/2" {
		t.Errorf("expected mobile link as identity, got %q", articles[1].Identity())
	}

	want := map[string]string{
		"query":         "tennis AND Wimbledon",
		"mode":          "ArtList",
		"format":        "json",
		"maxrecords":    "25",
		"sort":          "hybridrel",
		"startdatetime": "20260212120000",
		"enddatetime":   "20260214120000",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("param %s: expected %q, got %q", k, v, got[k])
		}
	}
	if agent != "TestAgent/1.0" {
		t.Errorf("expected user agent to be set, got %q", agent)
	}
}

func TestGDELTFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "Please limit requests to one every 5 seconds")
		}},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			fmt.Fprint(w, gdeltResponse)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := newGDELTTestClient(srv)
			c.client.Timeout = 100 * time.Millisecond
			if got := c.Search(context.Background(), curate.Query{Expression: "tennis", MaxRecords: 5, Hours: 24}); len(got) != 0 {
				t.Errorf("expected no articles, got %d", len(got))
			}
		})
	}
}

func TestGDELTUnreachable(t *testing.T) {
	c := NewGDELTClient("http://127.0.0.1:1", "", time.Second)
	if got := c.Search(context.Background(), curate.Query{Expression: "tennis"}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>"tennis" - Google News</title>
<item><title>Sinner wins in Rotterdam - BBC Sport</title><link>https://news.google.com/rss/articles/one</link><pubDate>Sat, 14 Feb 2026 09:00:00 GMT</pubDate><description>&lt;a href="https://news.google.com/rss/articles/one"&gt;Sinner wins in Rotterdam&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;BBC Sport&lt;/font&gt;</description><source url="https://www.bbc.co.uk">BBC Sport</source></item>
<item><title>Best tennis strings of the year - Tennis.com</title><link>https://news.google.com/rss/articles/two</link></item>
<item><title></title><link>https://news.google.com/rss/articles/empty</link></item>
<item><title>Guid only story</title><guid>https://news.google.com/rss/articles/guid</guid></item>
</channel></rss>`

func TestGoogleNewsSearch(t *testing.T) {
	var query, hl, gl, ceid string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		hl = r.URL.Query().Get("hl")
		gl = r.URL.Query().Get("gl")
		ceid = r.URL.Query().Get("ceid")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeed)
	}))
	defer srv.Close()

	c := NewGoogleNewsClient(srv.URL, LookupRegion("UK"), 10, "", time.Second)
	articles := c.Search(context.Background(), curate.Query{Expression: "tennis strings"})

	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	if articles[0].Title != "Sinner wins in Rotterdam" || articles[0].Source != "BBC Sport" {
		t.Errorf("expected publisher split from title, got %q / %q", articles[0].Title, articles[0].Source)
	}
	if articles[0].SeenAt.IsZero() {
		t.Error("expected published date to be parsed")
	}
	if articles[0].SourceURL != "https://www.bbc.co.uk" {
		t.Errorf("expected publisher URL from <source>, got %q", articles[0].SourceURL)
	}
	if articles[0].Summary != "Sinner wins in Rotterdam BBC Sport" {
		t.Errorf("expected plain-text description, got %q", articles[0].Summary)
	}
	if articles[1].SourceURL != "" {
		t.Errorf("expected no publisher URL without <source>, got %q", articles[1].SourceURL)
	}
	if articles[2].Identity() != "https://news.google.com/rss/articles/guid" {
		t.Errorf("expected GUID fallback, got %q", articles[2].Identity())
	}

	if query != "tennis strings" || hl != "en-GB" || gl != "GB" || ceid != "GB:en" {
		t.Errorf("unexpected locale params q=%q hl=%q gl=%q ceid=%q", query, hl, gl, ceid)
	}
}

func TestGoogleNewsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed)
	}))
	defer srv.Close()

	c := NewGoogleNewsClient(srv.URL, LookupRegion("US"), 10, "", time.Second)
	if got := c.Search(context.Background(), curate.Query{Expression: "tennis", MaxRecords: 1}); len(got) != 1 {
		t.Errorf("expected 1 article, got %d", len(got))
	}
}

func TestGoogleNewsFailureYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewGoogleNewsClient(srv.URL, LookupRegion("UK"), 10, "", time.Second)
	if got := c.Search(context.Background(), curate.Query{Expression: "tennis"}); len(got) != 0 {
		t.Errorf("expected no articles, got %d", len(got))
	}
}

func TestLookupRegion(t *testing.T) {
	tests := []struct {
		code, hl, gl, ceid string
	}{
		{"UK", "en-GB", "GB", "GB:en"},
		{"us", "en-US", "US", "US:en"},
		{"", "en-GB", "GB", "GB:en"},
		{"SG", "en-SG", "SG", "SG:en"},
	}
	for _, tt := range tests {
		r := LookupRegion(tt.code)
		if r.HL() != tt.hl || r.Country != tt.gl || r.CEID() != tt.ceid {
			t.Errorf("LookupRegion(%q) = %s/%s/%s", tt.code, r.HL(), r.Country, r.CEID())
		}
	}
}

func staticSearcher(articles ...curate.Article) (Searcher, *int) {
	calls := 0
	return SearcherFunc(func(context.Context, curate.Query) []curate.Article {
		calls++
		return articles
	}), &calls
}

func TestWithFallback(t *testing.T) {
	hit := curate.Article{Title: "A", URL: "https://a"}
	backup := curate.Article{Title: "B", URL: "https://b"}

	primary, _ := staticSearcher(hit)
	fallback, fallbackCalls := staticSearcher(backup)
	got := WithFallback(primary, fallback).Search(context.Background(), curate.Query{})
	if len(got) != 1 || got[0] != hit || *fallbackCalls != 0 {
		t.Errorf("expected primary result without fallback, got %v (%d fallback calls)", got, *fallbackCalls)
	}

	empty, _ := staticSearcher()
	got = WithFallback(empty, fallback).Search(context.Background(), curate.Query{})
	if len(got) != 1 || got[0] != backup || *fallbackCalls != 1 {
		t.Errorf("expected fallback result, got %v", got)
	}
}

func TestThrottledDelaysBetweenRequests(t *testing.T) {
	s, calls := staticSearcher()
	th := NewThrottled(s, 50*time.Millisecond)

	start := time.Now()
	th.Search(context.Background(), curate.Query{})
	if time.Since(start) > 40*time.Millisecond {
		t.Error("expected first request without delay")
	}
	th.Search(context.Background(), curate.Query{})
	if time.Since(start) < 50*time.Millisecond {
		t.Error("expected second request to wait for the delay")
	}
	if *calls != 2 {
		t.Errorf("expected 2 calls, got %d", *calls)
	}
}

func TestThrottledHonoursCancel(t *testing.T) {
	s, calls := staticSearcher(curate.Article{Title: "A", URL: "https://a"})
	th := NewThrottled(s, time.Hour)
	th.Search(context.Background(), curate.Query{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := th.Search(ctx, curate.Query{}); got != nil {
		t.Errorf("expected nil after cancel, got %v", got)
	}
	if *calls != 1 {
		t.Errorf("expected 1 call, got %d", *calls)
	}
}

func TestPacerSpacesFallbackRequest(t *testing.T) {
	var calledAt []time.Time
	record := func(articles ...curate.Article) Searcher {
		return SearcherFunc(func(context.Context, curate.Query) []curate.Article {
			calledAt = append(calledAt, time.Now())
			return articles
		})
	}

	pacer := NewPacer(50 * time.Millisecond)
	s := WithFallback(Paced(record(), pacer), Paced(record(curate.Article{Title: "B", URL: "https://b"}), pacer))

	got := s.Search(context.Background(), curate.Query{})
	if len(got) != 1 {
		t.Fatalf("expected fallback result, got %d", len(got))
	}
	if len(calledAt) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(calledAt))
	}
	if gap := calledAt[1].Sub(calledAt[0]); gap < 50*time.Millisecond {
		t.Errorf("expected fallback request to wait for the delay, gap was %v", gap)
	}
}

func TestPacerFirstWaitIsFree(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The first request never waits.
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Wait(ctx); err == nil {
		t.Error("expected context error on second wait")
	}
}

func TestSearchAllConcatenates(t *testing.T) {
	s := SearcherFunc(func(_ context.Context, q curate.Query) []curate.Article {
		return []curate.Article{{Title: q.Expression, URL: "https://x/" + q.Expression}}
	})

	got := SearchAll(context.Background(), s, []curate.Query{{Expression: "a"}, {Expression: "b"}, {Expression: "a"}})
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
	if got[1].Title != "b" {
		t.Errorf("expected query order preserved, got %q", got[1].Title)
	}
}

func TestNewSearcherNoSources(t *testing.T) {
	cfg := &config.Config{}
	s := NewSearcher(cfg)
	if got := s.Search(context.Background(), curate.Query{Expression: "tennis"}); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
