package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
)

func TestResultsEmpty(t *testing.T) {
	fragment, err := Results([]search.Result{})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := NoResultMessage, string(fragment); e != g {
		t.Errorf("fragment: expected %q, got %q", e, g)
	}
}

func TestResultsSingleItem(t *testing.T) {
	fragment, err := Results([]search.Result{
		{Title: "A", Link: "http://x", Summary: "S"},
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(fragment)))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	items := doc.Find(".res-item")
	if e, g := 1, items.Length(); e != g {
		t.Fatalf("items: expected %d, got %d", e, g)
	}

	if e, g := "A", items.Find("h2.title").Text(); e != g {
		t.Errorf("title: expected %q, got %q", e, g)
	}

	link := items.Find(".link > a")
	if e, g := "http://x", link.AttrOr("href", ""); e != g {
		t.Errorf("href: expected %q, got %q", e, g)
	}

	if e, g := "http://x", link.Text(); e != g {
		t.Errorf("link label: expected %q, got %q", e, g)
	}

	if e, g := "_blank", link.AttrOr("target", ""); e != g {
		t.Errorf("target: expected %q, got %q", e, g)
	}

	if e, g := "S", items.Find(".summary").Text(); e != g {
		t.Errorf("summary: expected %q, got %q", e, g)
	}
}

func TestResultsKeepOrder(t *testing.T) {
	fragment, err := Results([]search.Result{
		{Title: "First", Link: "http://1", Summary: "one"},
		{Title: "Second", Link: "http://2", Summary: "two"},
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(fragment)))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	titles := doc.Find(".res-item h2.title").Map(func(i int, s *goquery.Selection) string {
		return s.Text()
	})

	if e, g := "First,Second", strings.Join(titles, ","); e != g {
		t.Errorf("titles: expected %q, got %q", e, g)
	}
}

func TestResultsEscapeMarkup(t *testing.T) {
	fragment, err := Results([]search.Result{
		{Title: "<script>alert(1)</script>", Link: "javascript:alert(1)", Summary: "<b>bold</b>"},
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if strings.Contains(string(fragment), "<script>") {
		t.Errorf("expected title to be escaped, got %s", fragment)
	}

	if strings.Contains(string(fragment), `href="javascript:`) {
		t.Errorf("expected unsafe link to be filtered, got %s", fragment)
	}
}

func TestLoading(t *testing.T) {
	fragment, err := Loading()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if !strings.Contains(string(fragment), LoadingImagePath) {
		t.Errorf("expected loading fragment to reference %s, got %s", LoadingImagePath, fragment)
	}
}

func TestPage(t *testing.T) {
	results, err := Results(nil)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	page, err := Page(PageData{Query: "golang", Results: results})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "golang", doc.Find("#req").AttrOr("value", ""); e != g {
		t.Errorf("input value: expected %q, got %q", e, g)
	}

	if e, g := NoResultMessage, doc.Find(".result").Text(); e != g {
		t.Errorf("results: expected %q, got %q", e, g)
	}
}

func TestMarkdown(t *testing.T) {
	fragment, err := Results([]search.Result{
		{Title: "Gophers", Link: "http://go.dev", Summary: "All about gophers"},
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	markdown, err := Markdown(fragment)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	for _, expected := range []string{"## Gophers", "http://go.dev", "All about gophers"} {
		if !strings.Contains(markdown, expected) {
			t.Errorf("expected markdown to contain %q, got:\n%s", expected, markdown)
		}
	}
}

func TestResultsLinkSchemes(t *testing.T) {
	type testCase struct {
		Link         string
		ExpectedHref string
	}

	testCases := []testCase{
		{Link: "ftp://files.example.com/a", ExpectedHref: "ftp://files.example.com/a"},
		{Link: "gopher://x", ExpectedHref: "gopher://x"},
		{Link: "https://example.com/?a=1&b=2", ExpectedHref: "https://example.com/?a=1&b=2"},
		{Link: "/relative/page", ExpectedHref: "/relative/page"},
		{Link: "javascript:alert(1)", ExpectedHref: unsafeURL},
		{Link: "JavaScript:alert(1)", ExpectedHref: unsafeURL},
		{Link: "data:text/html,<b>x</b>", ExpectedHref: unsafeURL},
	}

	for _, tc := range testCases {
		t.Run(tc.Link, func(t *testing.T) {
			fragment, err := Results([]search.Result{{Title: "T", Link: tc.Link, Summary: "S"}})
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(fragment)))
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			link := doc.Find(".res-item .link > a")

			if e, g := tc.ExpectedHref, link.AttrOr("href", ""); e != g {
				t.Errorf("href: expected %q, got %q", e, g)
			}

			if e, g := tc.Link, link.Text(); e != g {
				t.Errorf("link label: expected %q, got %q", e, g)
			}
		})
	}
}
