package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/paneapp/pane-server/internal/service"
	"github.com/paneapp/pane-server/internal/validation"
)

var validate = validation.New()

func (s *Server) registerBrowseRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getListing",
		Method:      http.MethodGet,
		Path:        "/api/v1/browse",
		Summary:     "Get directory listing",
		Description: "Returns the current listing in the active sort order",
		Tags:        []string{"Browse"},
	}, s.handleGetListing)

	huma.Register(s.api, huma.Operation{
		OperationID: "navigate",
		Method:      http.MethodPost,
		Path:        "/api/v1/browse/navigate",
		Summary:     "Open a directory",
		Description: "Points the session at a new directory and reloads the listing",
		Tags:        []string{"Browse"},
	}, s.handleNavigate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBrowseStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/browse/status",
		Summary:     "Get session status",
		Description: "Returns path, generation, item count, and running size totals",
		Tags:        []string{"Browse"},
	}, s.handleGetStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectEntries",
		Method:      http.MethodPost,
		Path:        "/api/v1/browse/select",
		Summary:     "Select entries",
		Description: "Selects entries by name; names not yet listed are selected when they appear",
		Tags:        []string{"Browse"},
	}, s.handleSelect)

	huma.Register(s.api, huma.Operation{
		OperationID: "deselectEntries",
		Method:      http.MethodPost,
		Path:        "/api/v1/browse/deselect",
		Summary:     "Deselect entries",
		Tags:        []string{"Browse"},
	}, s.handleDeselect)

	huma.Register(s.api, huma.Operation{
		OperationID: "setFilter",
		Method:      http.MethodPost,
		Path:        "/api/v1/browse/filter",
		Summary:     "Set the listing filter",
		Description: "Applies a wildcard pattern; an empty pattern clears filtering",
		Tags:        []string{"Browse"},
	}, s.handleSetFilter)

	huma.Register(s.api, huma.Operation{
		OperationID: "expectNewEntry",
		Method:      http.MethodPost,
		Path:        "/api/v1/browse/expect",
		Summary:     "Expect a new entry",
		Description: "Marks a name the client just created so it is focused when it lands",
		Tags:        []string{"Browse"},
	}, s.handleExpect)

	huma.Register(s.api, huma.Operation{
		OperationID: "markDropped",
		Method:      http.MethodPost,
		Path:        "/api/v1/browse/dropped",
		Summary:     "Mark dropped entries",
		Description: "Names arriving from a drop are appended instead of insert-sorted",
		Tags:        []string{"Browse"},
	}, s.handleMarkDropped)

	huma.Register(s.api, huma.Operation{
		OperationID: "flushChanges",
		Method:      http.MethodPost,
		Path:        "/api/v1/browse/flush",
		Summary:     "Flush pending changes",
		Description: "Applies queued filesystem changes immediately instead of waiting for the coalescing timer",
		Tags:        []string{"Browse"},
	}, s.handleFlush)
}

// === DTOs ===

// ListingResponse contains the current directory listing.
type ListingResponse struct {
	Path    string          `json:"path" doc:"Currently open directory"`
	Entries []service.Entry `json:"entries" doc:"Listing rows in the active sort order"`
}

// ListingOutput wraps the listing response for Huma.
type ListingOutput struct {
	Body ListingResponse
}

// NavigateInput contains the directory to open.
type NavigateInput struct {
	Body struct {
		Path string `json:"path" validate:"required,min=1" doc:"Absolute path of the directory to open"`
	}
}

// StatusOutput wraps the session status for Huma.
type StatusOutput struct {
	Body service.Status
}

// NamesInput carries entry names for selection operations.
type NamesInput struct {
	Body struct {
		Names []string `json:"names" validate:"required,min=1" doc:"Entry names"`
	}
}

// FilterInput carries the wildcard filter pattern.
type FilterInput struct {
	Body struct {
		Pattern string `json:"pattern" doc:"Wildcard pattern; empty clears the filter"`
	}
}

// ExpectInput names the entry the client is about to create.
type ExpectInput struct {
	Body struct {
		Name string `json:"name" validate:"required,min=1" doc:"Name of the entry being created"`
	}
}

// FlushResponse reports the outcome of an explicit flush.
type FlushResponse struct {
	Applied   int   `json:"applied" doc:"Change records applied"`
	Discarded int   `json:"discarded" doc:"Stale records discarded"`
	Delta     int   `json:"delta" doc:"Net change in item count"`
	TookMs    int64 `json:"took_ms" doc:"Flush duration in milliseconds"`
}

// FlushOutput wraps the flush response for Huma.
type FlushOutput struct {
	Body FlushResponse
}

// AckOutput is the empty acknowledgement body for fire-and-forget ops.
type AckOutput struct {
	Body struct {
		Accepted bool `json:"accepted" doc:"Whether the request was accepted"`
	}
}

func ack() *AckOutput {
	out := &AckOutput{}
	out.Body.Accepted = true
	return out
}

// === Handlers ===

func (s *Server) handleGetListing(_ context.Context, _ *struct{}) (*ListingOutput, error) {
	return &ListingOutput{
		Body: ListingResponse{
			Path:    s.browser.Path(),
			Entries: s.browser.Listing(),
		},
	}, nil
}

func (s *Server) handleNavigate(ctx context.Context, input *NavigateInput) (*StatusOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.browser.Open(ctx, input.Body.Path); err != nil {
		s.logger.Warn("Navigation failed", "path", input.Body.Path, "error", err)
		return nil, err
	}

	return &StatusOutput{Body: s.browser.Status()}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	return &StatusOutput{Body: s.browser.Status()}, nil
}

func (s *Server) handleSelect(_ context.Context, input *NamesInput) (*AckOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}
	for _, name := range input.Body.Names {
		s.browser.Select(name)
	}
	return ack(), nil
}

func (s *Server) handleDeselect(_ context.Context, input *NamesInput) (*AckOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}
	for _, name := range input.Body.Names {
		s.browser.Deselect(name)
	}
	return ack(), nil
}

func (s *Server) handleSetFilter(_ context.Context, input *FilterInput) (*AckOutput, error) {
	s.browser.SetFilter(input.Body.Pattern)
	return ack(), nil
}

func (s *Server) handleExpect(_ context.Context, input *ExpectInput) (*AckOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}
	s.browser.ExpectNewItem(input.Body.Name)
	return ack(), nil
}

func (s *Server) handleMarkDropped(_ context.Context, input *NamesInput) (*AckOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}
	s.browser.MarkDropped(input.Body.Names...)
	return ack(), nil
}

func (s *Server) handleFlush(_ context.Context, _ *struct{}) (*FlushOutput, error) {
	start := time.Now()
	result := s.browser.Flush()

	return &FlushOutput{
		Body: FlushResponse{
			Applied:   result.Applied,
			Discarded: result.Discarded,
			Delta:     result.Delta,
			TookMs:    time.Since(start).Milliseconds(),
		},
	}, nil
}
