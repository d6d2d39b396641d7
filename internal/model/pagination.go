package model

// Pagination is the page metadata returned with list results.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	TotalPosts  int64 `json:"totalPosts"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes page metadata. page and limit must be >= 1.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		Limit:       limit,
		TotalPages:  pages,
		TotalPosts:  total,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

// PostPage is one page of posts.
type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
