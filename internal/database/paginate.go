package database

import "gorm.io/gorm"

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Pagination carries the requested page and, after counting, the total rows.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func (p *Pagination) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p *Pagination) Offset() int {
	p.normalize()
	return (p.Page - 1) * p.PageSize
}

// TotalPages is zero when nothing matched.
func (p *Pagination) TotalPages() int {
	p.normalize()
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// Paginate is a gorm scope applying offset and limit.
func Paginate(p *Pagination) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p == nil {
			return db
		}
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}
