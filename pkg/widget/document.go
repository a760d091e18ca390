package widget

import (
	"context"
	"html/template"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/bornholm/ownsearch/pkg/render"
	"github.com/pkg/errors"
)

const DefaultResultSelector = ".result"

// DocumentView renders into the results container of an HTML document held
// in memory.
type DocumentView struct {
	mutex      sync.RWMutex
	doc        *goquery.Document
	selector   string
	alerts     []string
	transition Transition
}

type DocumentViewOptionFunc func(v *DocumentView)

func WithResultSelector(selector string) DocumentViewOptionFunc {
	return func(v *DocumentView) {
		v.selector = selector
	}
}

// Alert implements View.
func (v *DocumentView) Alert(ctx context.Context, message string) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	slog.InfoContext(ctx, "alert", slog.String("message", message))

	v.alerts = append(v.alerts, message)
}

// ShowLoading implements View.
func (v *DocumentView) ShowLoading(ctx context.Context) error {
	fragment, err := render.Loading()
	if err != nil {
		return errors.WithStack(err)
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	return v.setContent(fragment)
}

// Show implements View.
func (v *DocumentView) Show(ctx context.Context, content template.HTML, transition Transition) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.transition = transition

	return v.setContent(content)
}

// Alerts returns the messages surfaced so far.
func (v *DocumentView) Alerts() []string {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	alerts := make([]string, len(v.alerts))
	copy(alerts, v.alerts)

	return alerts
}

// LastTransition returns the transition used by the latest call to Show.
func (v *DocumentView) LastTransition() Transition {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	return v.transition
}

// Content returns the current inner HTML of the results container.
func (v *DocumentView) Content() (string, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	container, err := v.container()
	if err != nil {
		return "", errors.WithStack(err)
	}

	html, err := container.Html()
	if err != nil {
		return "", errors.WithStack(err)
	}

	return html, nil
}

// Snapshot returns a copy of the results container content as a standalone
// document.
func (v *DocumentView) Snapshot() (*goquery.Document, error) {
	content, err := v.Content()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return doc, nil
}

// HTML returns the whole document.
func (v *DocumentView) HTML() (string, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	html, err := goquery.OuterHtml(v.doc.Selection)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return html, nil
}

func (v *DocumentView) setContent(content template.HTML) error {
	container, err := v.container()
	if err != nil {
		return errors.WithStack(err)
	}

	container.SetHtml(string(content))

	return nil
}

func (v *DocumentView) container() (*goquery.Selection, error) {
	container := v.doc.Find(v.selector).First()
	if container.Length() == 0 {
		return nil, errors.Errorf("results container '%s' not found", v.selector)
	}

	return container, nil
}

// NewDocumentView parses the given page. A nil page uses the default search
// page.
func NewDocumentView(page io.Reader, funcs ...DocumentViewOptionFunc) (*DocumentView, error) {
	if page == nil {
		html, err := render.Page(render.PageData{})
		if err != nil {
			return nil, errors.WithStack(err)
		}

		page = strings.NewReader(string(html))
	}

	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	v := &DocumentView{
		doc:      doc,
		selector: DefaultResultSelector,
	}

	for _, fn := range funcs {
		fn(v)
	}

	if _, err := v.container(); err != nil {
		return nil, errors.WithStack(err)
	}

	return v, nil
}

var _ View = &DocumentView{}
