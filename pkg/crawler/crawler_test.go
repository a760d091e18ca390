package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func newSite(t *testing.T, externalURL string) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title>Home</title></head><body>
			<p>Welcome home.</p>
			<a href="/about#team">About</a>
			<a href="/about">About again</a>
			<a href="/private/secret">Secret</a>
			<a href="%s/elsewhere">Elsewhere</a>
		</body></html>`, externalURL)
	})

	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>About</title></head><body>
			<p>About us.</p>
			<a href="/deep">Deep</a>
		</body></html>`)
	})

	mux.HandleFunc("/deep", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Deep</title></head><body><p>Deep page.</p></body></html>`)
	})

	mux.HandleFunc("/private/secret", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Secret</title></head><body><p>Secret page.</p></body></html>`)
	})

	return httptest.NewServer(mux)
}

func TestCrawl(t *testing.T) {
	var externalHits int32

	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&externalHits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>External</title></head><body></body></html>`)
	}))
	defer external.Close()

	site := newSite(t, external.URL)
	defer site.Close()

	crawler, err := NewCrawler(
		WithMaxDepth(2),
		WithExclude("*/private/*"),
	)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	var (
		lock  sync.Mutex
		pages []Page
	)

	crawler.OnPage(func(ctx context.Context, page Page) error {
		lock.Lock()
		defer lock.Unlock()

		pages = append(pages, page)

		return nil
	})

	total, err := crawler.Crawl(context.Background(), site.URL)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	t.Log(spew.Sdump(pages))

	titles := make([]string, 0, len(pages))
	for _, p := range pages {
		titles = append(titles, p.Title)
	}

	sort.Strings(titles)

	if e, g := "About,Home", strings.Join(titles, ","); e != g {
		t.Errorf("titles: expected %q, got %q", e, g)
	}

	if e, g := 2, total; e != g {
		t.Errorf("total: expected %d, got %d", e, g)
	}

	if e, g := int32(0), atomic.LoadInt32(&externalHits); e != g {
		t.Errorf("external hits: expected %d, got %d", e, g)
	}
}

func TestCrawlAggregatesConsumerErrors(t *testing.T) {
	site := newSite(t, "http://127.0.0.1:1")
	defer site.Close()

	crawler, err := NewCrawler(WithMaxDepth(1))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	crawler.OnPage(func(ctx context.Context, page Page) error {
		return errors.New("index unavailable")
	})

	if _, err := crawler.Crawl(context.Background(), site.URL); err == nil {
		t.Fatal("expected an error")
	}
}

func TestNewCrawlerInvalidPattern(t *testing.T) {
	if _, err := NewCrawler(WithInclude("[")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestNewCrawlerInvalidDepth(t *testing.T) {
	if _, err := NewCrawler(WithMaxDepth(0)); err == nil {
		t.Fatal("expected an error")
	}
}

func TestCrawlRejectsUnsupportedScheme(t *testing.T) {
	crawler, err := NewCrawler()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if _, err := crawler.Crawl(context.Background(), "ftp://example.com"); err == nil {
		t.Fatal("expected an error")
	}
}
