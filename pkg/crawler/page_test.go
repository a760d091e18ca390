package crawler

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title> Gopher   handbook </title>
  <script>var ignored = "script content";</script>
</head>
<body>
  <h1>Handbook</h1>
  <script>document.write("still ignored")</script>
  <p>Gophers are   burrowing rodents.</p>
  <p>They live in North America.</p>
  <a href="/chapters/1#intro">Chapter 1</a>
  <a href="/chapters/1#outro">Chapter 1 again</a>
  <a href="chapters/2">Chapter 2</a>
  <a href="https://example.org/external">External</a>
  <a href="mailto:gopher@example.com">Mail</a>
  <a href="#top">Top</a>
</body>
</html>`

func mustParse(t *testing.T, raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return u
}

func TestExtractPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	page := ExtractPage(mustParse(t, "http://localhost/guide/index.html"), doc.Selection, DefaultSummaryLength)

	if e, g := "Gopher handbook", page.Title; e != g {
		t.Errorf("title: expected %q, got %q", e, g)
	}

	if e, g := "Gophers are burrowing rodents. They live in North America.", page.Summary; e != g {
		t.Errorf("summary: expected %q, got %q", e, g)
	}

	if e, g := "http://localhost/guide/index.html", page.Link; e != g {
		t.Errorf("link: expected %q, got %q", e, g)
	}
}

func TestExtractPageMetaDescription(t *testing.T) {
	html := `<html><head><meta name="description" content="A page about gophers"></head><body><p>Body text</p></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	page := ExtractPage(mustParse(t, "http://localhost/"), doc.Selection, DefaultSummaryLength)

	if e, g := "A page about gophers", page.Summary; e != g {
		t.Errorf("summary: expected %q, got %q", e, g)
	}

	if e, g := "http://localhost/", page.Title; e != g {
		t.Errorf("title: expected %q, got %q", e, g)
	}
}

func TestExtractLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	links := ExtractLinks(mustParse(t, "http://localhost/guide/index.html"), doc.Selection)

	expected := []string{
		"http://localhost/chapters/1",
		"http://localhost/guide/chapters/2",
		"https://example.org/external",
	}

	if e, g := strings.Join(expected, ","), strings.Join(links, ","); e != g {
		t.Errorf("links: expected %q, got %q", e, g)
	}
}

func TestTruncate(t *testing.T) {
	type testCase struct {
		Text     string
		Max      int
		Expected string
	}

	testCases := []testCase{
		{Text: "short", Max: 10, Expected: "short"},
		{Text: "the quick brown fox", Max: 12, Expected: "the quick…"},
		{Text: "unbreakable", Max: 4, Expected: "unbr…"},
		{Text: "no limit", Max: 0, Expected: "no limit"},
	}

	for _, tc := range testCases {
		if e, g := tc.Expected, truncate(tc.Text, tc.Max); e != g {
			t.Errorf("truncate(%q, %d): expected %q, got %q", tc.Text, tc.Max, e, g)
		}
	}
}
