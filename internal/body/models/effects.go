package models

import (
	"math"
	"strings"
	"time"

	id "dvi/pkg/domain"
)

// PersonalEffects describes items found with a body.
type PersonalEffects struct {
	BodyID    id.BodyID `json:"body_id"`
	Clothing  string    `json:"clothing"`
	Jewellery string    `json:"jewellery"`
	Footwear  string    `json:"footwear"`
	Watch     string    `json:"watch"`
	Other     string    `json:"other"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *PersonalEffects) Validate() error {
	for field, v := range map[string]string{
		"clothing":  e.Clothing,
		"jewellery": e.Jewellery,
		"footwear":  e.Footwear,
		"watch":     e.Watch,
		"other":     e.Other,
	} {
		if err := ValidateText(field, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *PersonalEffects) IsEmpty() bool {
	return strings.TrimSpace(e.Clothing+e.Jewellery+e.Footwear+e.Watch+e.Other) == ""
}

// DefaultPageSize is the label search page size when none is given.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// SearchQuery pages through bodies whose label matches Query.
type SearchQuery struct {
	Query    string
	Page     int
	PageSize int
}

// Normalize clamps paging to sane values. Page is 1-based.
func (q *SearchQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	// Offset stays within a 32-bit OFFSET.
	if maxPage := math.MaxInt32/q.PageSize + 1; q.Page > maxPage {
		q.Page = maxPage
	}
}

func (q SearchQuery) Offset() int { return (q.Page - 1) * q.PageSize }

// SearchResult is one page of a label search.
type SearchResult struct {
	Bodies   []*Body `json:"bodies"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// Details is a body with its owned records.
type Details struct {
	*Body
	Checklist *Checklist       `json:"checklist"`
	Effects   *PersonalEffects `json:"effects,omitempty"`
}
