package feed

import (
	"cmp"
	"slices"
	"strings"

	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/textnorm"
)

// Filter applies p to an in-memory snapshot and returns the same page List would return
// for the same rows. The input slice is left untouched.
func Filter(articles []models.Article, p Params) Page {
	matched := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if Match(a, p) {
			matched = append(matched, a)
		}
	}
	slices.SortStableFunc(matched, func(a, b models.Article) int {
		return compareArticles(a, b, p)
	})

	total := len(matched)
	start := min(p.Offset(), total)
	end := min(start+p.Limit, total)
	return NewPage(slices.Clone(matched[start:end]), int64(total), p)
}

// Match reports whether a passes every filter in p.
func Match(a models.Article, p Params) bool {
	if len(p.Tags) > 0 {
		tags := models.Tags(textnorm.NormalizeTags(a.Tags))
		if !slices.ContainsFunc(p.Tags, tags.Has) {
			return false
		}
	}
	if p.Author != "" && !strings.Contains(textnorm.Fold(a.Author), p.Author) {
		return false
	}
	if p.MinClaps != nil && a.Claps < *p.MinClaps {
		return false
	}
	if len(p.Tokens) == 0 {
		return true
	}
	text := a.BuildSearchText()
	for _, token := range p.Tokens {
		if !tokenMatches(a, text, token) {
			return false
		}
	}
	return true
}

func tokenMatches(a models.Article, searchText, token string) bool {
	if strings.Contains(searchText, token) {
		return true
	}
	numeric, n, ok := numericToken(token)
	if !numeric {
		return false
	}
	if ok && a.Claps == n {
		return true
	}
	return strings.Contains(a.ReadTime, token)
}

func compareArticles(a, b models.Article, p Params) int {
	switch p.ClapSort {
	case ClapSortMin:
		if c := cmp.Compare(a.Claps, b.Claps); c != 0 {
			return c
		}
	case ClapSortMax:
		if c := cmp.Compare(b.Claps, a.Claps); c != 0 {
			return c
		}
	}
	c := chronological(a, b)
	if p.Sort == SortOldest {
		return c
	}
	return -c
}

// chronological orders by creation time and id. Rows without a creation time (client-built
// snapshots) fall back to the display date; unparseable dates compare equal.
func chronological(a, b models.Article) int {
	if a.CreatedAt.IsZero() && b.CreatedAt.IsZero() {
		da, errA := ParseDisplayDate(a.Date)
		db, errB := ParseDisplayDate(b.Date)
		if errA != nil || errB != nil {
			return 0
		}
		return da.Compare(db)
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
