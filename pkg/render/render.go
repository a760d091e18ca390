// Package render produces the HTML fragments displayed in the results
// container of the search widget.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
)

// unsafeURL replaces refused links, as html/template does.
const unsafeURL = "#ZgotmplZ"

const (
	NoResultMessage  = "No result."
	FailureMessage   = "Search failed."
	LoadingImagePath = "/static/image/ajax-loader.gif"
	DefaultPageTitle = "Own Search"
)

//go:embed templates/*.gotmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{
			"noResult":     func() string { return NoResultMessage },
			"failure":      func() string { return FailureMessage },
			"loadingImage": func() string { return LoadingImagePath },
			"safeURL":      safeURL,
		}).
		ParseFS(templateFS, "templates/*.gotmpl"),
)

// Results renders one block per result, in order, or the "No result."
// message when results is empty.
func Results(results []search.Result) (template.HTML, error) {
	return execute("results", results)
}

// Loading renders the loading indicator.
func Loading() (template.HTML, error) {
	return execute("loading", nil)
}

// Failure renders the message displayed when a search could not complete.
func Failure() (template.HTML, error) {
	return execute("failure", nil)
}

type PageData struct {
	Title   string
	Query   string
	Results template.HTML
}

// Page renders the complete search page.
func Page(data PageData) (template.HTML, error) {
	if data.Title == "" {
		data.Title = DefaultPageTitle
	}

	return execute("page", data)
}

// Markdown converts a rendered fragment to markdown.
func Markdown(fragment template.HTML) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)

	markdown, err := conv.ConvertString(string(fragment))
	if err != nil {
		return "", errors.WithStack(err)
	}

	return strings.TrimSpace(markdown), nil
}

// safeURL lets any well-formed link through except the schemes a browser
// would execute.
func safeURL(link string) template.URL {
	u, err := url.Parse(link)
	if err != nil {
		return unsafeURL
	}

	switch strings.ToLower(u.Scheme) {
	case "javascript", "vbscript", "data":
		return unsafeURL
	}

	return template.URL(link)
}

func execute(name string, data any) (template.HTML, error) {
	var buff bytes.Buffer

	if err := templates.ExecuteTemplate(&buff, name, data); err != nil {
		return "", errors.Wrapf(err, "could not render template '%s'", name)
	}

	return template.HTML(buff.String()), nil
}
