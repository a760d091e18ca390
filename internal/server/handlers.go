package server

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/bornholm/ownsearch/pkg/render"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/bornholm/ownsearch/pkg/search/remote"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func (s *Server) handleQuery(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.PostForm(remote.QueryField)
	if len(query) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}

	results, err := s.client.Search(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "search failed", slog.String("query", query), slog.Any("error", errors.WithStack(err)))
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, search.NewResponse(results))
}

// handleIndex renders the search page. When a query is given, results are
// rendered server side.
func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.Query(remote.QueryField)

	var (
		fragment template.HTML
		err      error
	)

	if query != "" {
		results, searchErr := s.client.Search(ctx, query)
		if searchErr != nil {
			slog.ErrorContext(ctx, "search failed", slog.String("query", query), slog.Any("error", errors.WithStack(searchErr)))
			fragment, err = render.Failure()
		} else {
			fragment, err = render.Results(results)
		}

		if err != nil {
			slog.ErrorContext(ctx, "could not render results", slog.Any("error", errors.WithStack(err)))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
	}

	page, err := render.Page(render.PageData{
		Title:   s.title,
		Query:   query,
		Results: fragment,
	})
	if err != nil {
		slog.ErrorContext(ctx, "could not render page", slog.Any("error", errors.WithStack(err)))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
