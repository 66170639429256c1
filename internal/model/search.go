package model

import (
	"math"
	"strings"
)

// SortField is a company column clients may order by.
type SortField string

const (
	SortByName           SortField = "name"
	SortByIndustry       SortField = "industry"
	SortByStage          SortField = "stage"
	SortByLocation       SortField = "location"
	SortByCreatedAt      SortField = "createdAt"
	SortByUpdatedAt      SortField = "updatedAt"
	SortByLastEnrichedAt SortField = "lastEnrichedAt"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// MaxPage keeps (Page-1)*Limit inside int for any allowed limit.
const MaxPage = math.MaxInt / MaxLimit

// sortableFields is the allow-list of sort keys.
var sortableFields = map[SortField]bool{
	SortByName:           true,
	SortByIndustry:       true,
	SortByStage:          true,
	SortByLocation:       true,
	SortByCreatedAt:      true,
	SortByUpdatedAt:      true,
	SortByLastEnrichedAt: true,
}

// ParseSortField returns the matching allow-listed field, or SortByName.
func ParseSortField(s string) SortField {
	f := SortField(strings.TrimSpace(s))
	if sortableFields[f] {
		return f
	}
	return SortByName
}

// ParseSortOrder returns SortDesc for "desc" (any case) and SortAsc otherwise.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// CompanyFilter selects and orders a page of companies.
type CompanyFilter struct {
	Search    string
	Industry  string
	Stage     string
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// Normalize applies defaults and bounds in place.
func (f *CompanyFilter) Normalize() {
	f.Search = strings.TrimSpace(f.Search)
	f.Industry = strings.TrimSpace(f.Industry)
	f.Stage = strings.TrimSpace(f.Stage)
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if !sortableFields[f.SortBy] {
		f.SortBy = SortByName
	}
	if f.SortOrder != SortDesc {
		f.SortOrder = SortAsc
	}
}

// Offset is the number of rows skipped before the page starts.
// It saturates at math.MaxInt instead of wrapping.
func (f *CompanyFilter) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// PageMeta describes a returned page.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPageMeta computes page metadata; TotalPages is ceil(total/limit).
func NewPageMeta(total, page, limit int) PageMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PageMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// CompanyPage is one page of the company directory.
type CompanyPage struct {
	Data []*Company `json:"data"`
	Meta PageMeta   `json:"meta"`
}
