package crawler

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const DefaultSummaryLength = 300

// Page is a crawled HTML page.
type Page struct {
	Title   string
	Link    string
	Summary string
	Depth   int
}

// ExtractPage builds a Page from the given document.
func ExtractPage(pageURL *url.URL, doc *goquery.Selection, summaryLength int) Page {
	title := collapseSpaces(doc.Find("head > title").First().Text())
	if title == "" {
		title = collapseSpaces(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = pageURL.String()
	}

	summary := collapseSpaces(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if summary == "" {
		body := doc.Find("body").Clone()
		body.Find("script, style, noscript").Remove()

		paragraphs := body.Find("p").Map(func(i int, s *goquery.Selection) string {
			return s.Text()
		})

		summary = collapseSpaces(strings.Join(paragraphs, " "))
		if summary == "" {
			summary = collapseSpaces(body.Text())
		}
	}

	return Page{
		Title:   title,
		Link:    pageURL.String(),
		Summary: truncate(summary, summaryLength),
	}
}

// ExtractLinks returns the absolute http(s) links of the document, without
// fragments and without duplicates.
func ExtractLinks(base *url.URL, doc *goquery.Selection) []string {
	links := make([]string, 0)
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		link, ok := normalizeLink(base, s.AttrOr("href", ""))
		if !ok {
			return
		}

		if _, exists := seen[link]; exists {
			return
		}

		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

func normalizeLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if idx := strings.Index(href, "#"); idx != -1 {
		href = href[:idx]
	}

	if href == "" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	return resolved.String(), true
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string, max int) string {
	if max <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := max
	for i := max; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}

	return strings.TrimSpace(string(runes[:cut])) + "…"
}
