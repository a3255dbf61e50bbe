package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/paneapp/pane-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the listing",
		Description: "Filename search over the currently visible listing",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the listing.
type SearchInput struct {
	Query         string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Kind          string `query:"kind" validate:"omitempty,oneof=file dir" doc:"Restrict to files or directories"`
	Exts          string `query:"exts" validate:"omitempty,max=200" doc:"Comma-separated extensions without dots"`
	MinSize       int64  `query:"min_size" validate:"omitempty,gte=0" doc:"Minimum size in bytes"`
	MaxSize       int64  `query:"max_size" validate:"omitempty,gte=0" doc:"Maximum size in bytes (0 = unbounded)"`
	IncludeHidden bool   `query:"hidden" doc:"Include dotfiles"`
	Limit         int    `query:"limit" validate:"omitempty,gte=1,lte=200" doc:"Max results (default 50)"`
	Offset        int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
	SortBy        string `query:"sort" validate:"omitempty,oneof=relevance name size modified" doc:"Sort column (default relevance)"`
	SortOrder     string `query:"order" validate:"omitempty,oneof=asc desc" doc:"Sort direction"`
	Facets        bool   `query:"facets" doc:"Include facet counts"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if err := validate.Validate(input); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.Kind = input.Kind
	params.MinSize = input.MinSize
	params.MaxSize = input.MaxSize
	params.IncludeHidden = input.IncludeHidden
	params.IncludeFacets = input.Facets
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	if input.Exts != "" {
		for _, ext := range strings.Split(input.Exts, ",") {
			ext = strings.TrimSpace(strings.TrimPrefix(ext, "."))
			if ext != "" {
				params.Exts = append(params.Exts, ext)
			}
		}
	}

	result, err := s.browser.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	s.logger.Debug("Search completed",
		"query", input.Query,
		"total", result.Total,
		"took_ms", result.TookMs,
	)

	return &SearchOutput{Body: *result}, nil
}
