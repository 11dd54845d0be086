package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bravepulse/internal/web"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type pageRequest struct {
	Page    int
	PerPage int
}

func (p pageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func parsePagination(c *gin.Context) pageRequest {
	req := pageRequest{Page: 1, PerPage: defaultPerPage}
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			req.Page = value
		}
	}
	if raw := strings.TrimSpace(c.Query("per_page")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			req.PerPage = value
		}
	}
	if req.PerPage > maxPerPage {
		req.PerPage = maxPerPage
	}
	return req
}

// paginate returns the requested window of items, clamped to the slice.
func paginate[T any](items []T, req pageRequest) []T {
	start := req.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + req.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func buildPaginationData(basePath string, req pageRequest, total int64) web.PaginationData {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages == 0 {
		totalPages = 1
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	data := web.PaginationData{
		BasePath:   basePath,
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if data.HasPrev {
		data.PrevPage = page - 1
	}
	if data.HasNext {
		data.NextPage = page + 1
	}
	return data
}
