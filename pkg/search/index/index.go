// Package index provides a local full-text index of crawled pages that can
// answer search queries.
package index

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
)

const (
	DefaultLimit = 10
	documentType = "page"
)

// Document is an indexed page. Its link identifies it in the index.
type Document struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
}

func (d Document) Type() string {
	return documentType
}

type Index struct {
	index bleve.Index
	limit int
	mutex sync.RWMutex
}

type OptionFunc func(i *Index)

func WithLimit(limit int) OptionFunc {
	return func(i *Index) {
		i.limit = limit
	}
}

// Index adds or replaces the given document.
func (i *Index) Index(ctx context.Context, doc Document) error {
	if doc.Link == "" {
		return errors.New("document link must not be empty")
	}

	i.mutex.Lock()
	defer i.mutex.Unlock()

	if err := i.index.Index(doc.Link, doc); err != nil {
		return errors.WithStack(err)
	}

	slog.DebugContext(ctx, "document indexed", slog.String("link", doc.Link))

	return nil
}

// Search implements search.Client. Only documents matching at least one of
// the query terms are returned, best match first.
func (i *Index) Search(ctx context.Context, query string) ([]search.Result, error) {
	matchQuery := bleve.NewMatchQuery(query)

	searchRequest := bleve.NewSearchRequestOptions(matchQuery, i.limit, 0, false)
	searchRequest.Fields = []string{"title", "link", "summary"}

	i.mutex.RLock()
	defer i.mutex.RUnlock()

	searchResults, err := i.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	results := make([]search.Result, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		results = append(results, search.Result{
			Title:   fieldString(hit.Fields, "title"),
			Link:    hit.ID,
			Summary: fieldString(hit.Fields, "summary"),
		})
	}

	slog.DebugContext(ctx, "index searched", slog.String("query", query), slog.Int("results", len(results)), slog.Uint64("total", searchResults.Total))

	return results, nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	count, err := i.index.DocCount()
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return count, nil
}

func (i *Index) Close() error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if err := i.index.Close(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func fieldString(fields map[string]any, name string) string {
	value, _ := fields[name].(string)
	return value
}

func newMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()

	// Title and summary are searchable and stored to build results
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Store = true
	titleFieldMapping.Index = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	summaryFieldMapping := bleve.NewTextFieldMapping()
	summaryFieldMapping.Store = true
	summaryFieldMapping.Index = true
	docMapping.AddFieldMappingsAt("summary", summaryFieldMapping)

	linkFieldMapping := bleve.NewKeywordFieldMapping()
	linkFieldMapping.Store = true
	linkFieldMapping.Index = false
	linkFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("link", linkFieldMapping)

	indexMapping.AddDocumentMapping(documentType, docMapping)
	indexMapping.DefaultType = documentType

	return indexMapping
}

// NewMemOnly returns an index that is lost when closed.
func NewMemOnly(funcs ...OptionFunc) (*Index, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return newIndex(index, funcs...), nil
}

// Open opens the index stored at path, creating it when it does not exist.
func Open(path string, funcs ...OptionFunc) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.WithStack(err)
		}

		index, err := bleve.New(path, newMapping())
		if err != nil {
			return nil, errors.Wrapf(err, "could not create index '%s'", path)
		}

		return newIndex(index, funcs...), nil
	}

	index, err := bleve.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open index '%s'", path)
	}

	return newIndex(index, funcs...), nil
}

func newIndex(index bleve.Index, funcs ...OptionFunc) *Index {
	i := &Index{
		index: index,
		limit: DefaultLimit,
	}

	for _, fn := range funcs {
		fn(i)
	}

	return i
}

var _ search.Client = &Index{}
