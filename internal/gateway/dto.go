package gateway

import (
	"encoding/json"

	"staygrip/internal/domain"
)

// PropertyResponse is the envelope of every listing endpoint
type PropertyResponse struct {
	Success    bool              `json:"success"`
	Data       []domain.Property `json:"data"`
	Message    string            `json:"message"`
	Pagination PaginationDTO     `json:"pagination"`
}

// PaginationDTO is the pagination block of PropertyResponse
type PaginationDTO struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func (p PaginationDTO) toDomain() domain.PageInfo {
	info := domain.PageInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
	if info.TotalPages == 0 && info.PageSize > 0 {
		info.TotalPages = (info.Total + info.PageSize - 1) / info.PageSize
	}
	return info
}

// FilterOptionsResponse is returned by getAllViewTypeAndHouseType.php.
// Categories are either plain names or {name, id} objects.
type FilterOptionsResponse struct {
	ViewTypes  []string          `json:"viewtypes"`
	Categories []json.RawMessage `json:"categories"`
}

type namedOption struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}
