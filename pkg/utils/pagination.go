package utils

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination параметры постраничной выборки
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPagination нормализует номер и размер страницы
func NewPagination(page, pageSize int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Pagination{Page: page, PageSize: pageSize}
}

// Unpaginated выборка всех элементов одной страницей: GetLimit возвращает 0
func Unpaginated() *Pagination {
	return &Pagination{Page: 1}
}

// Paginated false для выборки без ограничения размера
func (p *Pagination) Paginated() bool {
	return p.PageSize > 0
}

// PaginationFromQuery читает page и page_size из query-параметров.
// Без обоих параметров возвращает Unpaginated; нечисловые значения заменяются значениями по умолчанию.
func PaginationFromQuery(q url.Values) *Pagination {
	if !q.Has("page") && !q.Has("page_size") {
		return Unpaginated()
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return NewPagination(page, size)
}

// SetTotal устанавливает общее количество элементов и пересчитывает зависимые поля
func (p *Pagination) SetTotal(totalItems int64) {
	p.TotalItems = totalItems
	if !p.Paginated() {
		p.TotalPages = 0
		if totalItems > 0 {
			p.TotalPages = 1
		}
		p.HasNext, p.HasPrev = false, false
		return
	}
	p.TotalPages = int((totalItems + int64(p.PageSize) - 1) / int64(p.PageSize))
	p.HasNext = p.Page < p.TotalPages
	p.HasPrev = p.Page > 1
}

// GetOffset смещение для SQL запроса
func (p *Pagination) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit лимит для SQL запроса; 0 означает без LIMIT
func (p *Pagination) GetLimit() int {
	return p.PageSize
}
