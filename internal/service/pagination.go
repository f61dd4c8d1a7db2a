package service

import "github.com/stemsi/theoryexam-backend/internal/response"

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// pageWindow clamps page and perPage and returns the matching limit and offset.
func pageWindow(page, perPage int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, perPage, (page - 1) * perPage
}

func newPagination(page, perPage, total int) *response.Pagination {
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}
