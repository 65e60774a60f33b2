// Package feed builds the paginated news feed. Query/List translate Params into SQL through
// gorm; Filter applies the same predicates, order and pagination to articles already in memory.
package feed

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/textnorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// maxPaging bounds page and limit so the offset cannot overflow.
	maxPaging = math.MaxInt32
)

// ClapSort selects claps as the primary sort key.
type ClapSort string

const (
	ClapSortNone ClapSort = ""
	ClapSortMin  ClapSort = "min"
	ClapSortMax  ClapSort = "max"
)

// SortOrder is the creation-time direction.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// Params is the parsed form of the feed query string.
type Params struct {
	Page     int
	Limit    int
	Tags     []string // normalized, any-of
	Author   string   // folded, substring
	MinClaps *int64
	Tokens   []string // normalized, all-of
	ClapSort ClapSort
	Sort     SortOrder
}

// Page is one page of the feed plus its metadata.
type Page struct {
	News        []models.Article `json:"news"`
	TotalPages  int64            `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Total       int64            `json:"total"`
}

// ParseParams reads page, limit, filters, author, minClaps, q, clapSort and sort.
// It never fails: malformed values fall back to their defaults or are ignored.
func ParseParams(v url.Values) Params {
	p := Params{
		Page:     DefaultPage,
		Limit:    DefaultLimit,
		ClapSort: ClapSortNone,
		Sort:     SortNewest,
	}
	if n, ok := leadingInt(v.Get("page")); ok {
		p.Page = int(min(max(n, 0), maxPaging))
	}
	if n, ok := leadingInt(v.Get("limit")); ok {
		p.Limit = int(min(max(n, 0), maxPaging))
	}
	p.Page = min(max(p.Page, 1), maxPaging)
	p.Limit = min(max(p.Limit, 1), maxPaging)

	if raw := v.Get("filters"); raw != "" {
		p.Tags = textnorm.NormalizeTags(strings.Split(raw, ","))
	}
	p.Author = textnorm.Fold(v.Get("author"))
	if n, ok := leadingInt(v.Get("minClaps")); ok {
		p.MinClaps = &n
	}
	p.Tokens = textnorm.Tokenize(v.Get("q"))

	switch ClapSort(strings.TrimSpace(v.Get("clapSort"))) {
	case ClapSortMin:
		p.ClapSort = ClapSortMin
	case ClapSortMax:
		p.ClapSort = ClapSortMax
	}
	if strings.TrimSpace(v.Get("sort")) == string(SortOldest) {
		p.Sort = SortOldest
	}
	return p
}

// Offset is the number of matching articles before the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPage assembles the response for one page of a result set of total articles.
func NewPage(news []models.Article, total int64, p Params) Page {
	if news == nil {
		news = []models.Article{}
	}
	limit := max(int64(p.Limit), 1)
	return Page{
		News:        news,
		TotalPages:  max(1, (total+limit-1)/limit),
		CurrentPage: p.Page,
		Total:       total,
	}
}

// leadingInt parses an optional sign followed by the leading decimal digits of s, so "3",
// " 3 " and "3abc" are all 3. Anything without leading digits is rejected.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
