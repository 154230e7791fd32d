package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationParams carries page-based pagination from the query string
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ExtractPaginationParams reads page and page_size query parameters,
// clamping page_size to the maximum.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Page: 1, PageSize: defaultPageSize}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if pageSize := r.URL.Query().Get("page_size"); pageSize != "" {
		if ps, err := strconv.Atoi(pageSize); err == nil && ps > 0 {
			if ps > maxPageSize {
				ps = maxPageSize
			}
			params.PageSize = ps
		}
	}

	return params
}

// Bounds returns the half-open [start, end) slice bounds for a list of
// the given total length.
func (p PaginationParams) Bounds(total int) (int, int) {
	start := (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// PaginationInfo describes the page a response carries
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// PaginatedResult pairs a page of items with its pagination metadata
type PaginatedResult struct {
	Items      interface{}     `json:"items"`
	Pagination *PaginationInfo `json:"pagination"`
}

// NewPaginatedResult creates a paginated result
func NewPaginatedResult(items interface{}, params PaginationParams, total int) *PaginatedResult {
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = total / params.PageSize
		if total%params.PageSize > 0 {
			totalPages++
		}
	}

	return &PaginatedResult{
		Items: items,
		Pagination: &PaginationInfo{
			Page:       params.Page,
			PageSize:   params.PageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    params.Page < totalPages,
			HasPrev:    params.Page > 1,
		},
	}
}
