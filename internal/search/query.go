package search

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a listing search.
type Params struct {
	Query string // User's search query
	Kind  string // "file", "dir", or empty for both

	// Filters
	Exts          []string // Filter by exact extensions (lowercase, no dot)
	MinSize       int64    // Minimum size in bytes
	MaxSize       int64    // Maximum size in bytes (0 = unbounded)
	IncludeHidden bool     // Include dotfiles in results

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "size", "modified"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include extension facet counts
	Highlight     bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         50,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Facets ResultFacets `json:"facets,omitempty"`
}

// Hit represents a single matched entry. Index is the stable internal
// index of the item in the listing.
type Hit struct {
	Index      int               `json:"index"`
	Name       string            `json:"name"`
	Kind       EntryKind         `json:"kind"`
	Ext        string            `json:"ext,omitempty"`
	Size       int64             `json:"size"`
	Modified   int64             `json:"modified"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// ResultFacets contains facet counts.
type ResultFacets struct {
	Kinds []FacetCount `json:"kinds,omitempty"`
	Exts  []FacetCount `json:"exts,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search over the current listing.
func (s *ListingIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("kind", bleve.NewFacetRequest("kind", 2))
		searchRequest.AddFacet("ext", bleve.NewFacetRequest("ext", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
	}

	searchRequest.Fields = []string{"id", "name", "kind", "ext", "size", "modified"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		entryHit := Hit{Score: hit.Score}

		if id, ok := hit.Fields["id"].(string); ok {
			if idx, err := strconv.Atoi(id); err == nil {
				entryHit.Index = idx
			}
		}
		if n, ok := hit.Fields["name"].(string); ok {
			entryHit.Name = n
		}
		if k, ok := hit.Fields["kind"].(string); ok {
			entryHit.Kind = EntryKind(k)
		}
		if e, ok := hit.Fields["ext"].(string); ok {
			entryHit.Ext = e
		}
		if sz, ok := hit.Fields["size"].(float64); ok {
			entryHit.Size = int64(sz)
		}
		if m, ok := hit.Fields["modified"].(float64); ok {
			entryHit.Modified = int64(m)
		}

		if len(hit.Fragments) > 0 {
			entryHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					entryHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, entryHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Exact token match with highest boost.
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Fuzzy matching for typo tolerance.
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for as-you-type filtering (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Kind filter.
	if params.Kind != "" {
		kq := bleve.NewTermQuery(params.Kind)
		kq.SetField("kind")
		queries = append(queries, kq)
	}

	// Extension filter (exact match, OR across extensions).
	if len(params.Exts) > 0 {
		extQueries := make([]query.Query, len(params.Exts))
		for i, ext := range params.Exts {
			eq := bleve.NewTermQuery(strings.ToLower(ext))
			eq.SetField("ext")
			extQueries[i] = eq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(extQueries...))
	}

	// Hidden entries are excluded unless asked for.
	if !params.IncludeHidden {
		hidden := false
		hq := bleve.NewBoolFieldQuery(hidden)
		hq.SetField("hidden")
		queries = append(queries, hq)
	}

	// Size range filter.
	if params.MinSize > 0 || params.MaxSize > 0 {
		min := float64(params.MinSize)
		max := float64(params.MaxSize)
		if params.MaxSize == 0 {
			max = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("size")
		queries = append(queries, rangeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "size":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"size"})
		} else {
			req.SortBy([]string{"-size"})
		}
	case "modified":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"modified"})
		} else {
			req.SortBy([]string{"-modified"})
		}
	default:
		// Relevance (score) is default.
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) ResultFacets {
	facets := ResultFacets{}

	if kindFacet, ok := result.Facets["kind"]; ok {
		for _, term := range kindFacet.Terms.Terms() {
			facets.Kinds = append(facets.Kinds, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if extFacet, ok := result.Facets["ext"]; ok {
		for _, term := range extFacet.Terms.Terms() {
			facets.Exts = append(facets.Exts, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
