package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/textnorm"
)

// '!' instead of backslash: MySQL and PostgreSQL disagree on backslashes in string literals.
const likeEscape = " ESCAPE '!'"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// Query returns an articles query carrying every filter in p and no ordering or paging.
func Query(db *gorm.DB, p Params) *gorm.DB {
	q := db.Model(&models.Article{})

	if len(p.Tags) > 0 {
		conds := make([]string, 0, len(p.Tags))
		args := make([]interface{}, 0, len(p.Tags))
		for _, tag := range p.Tags {
			conds = append(conds, "tags LIKE ?"+likeEscape)
			args = append(args, "%,"+likeEscaper.Replace(tag)+",%")
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	if p.Author != "" {
		q = q.Where("author_key LIKE ?"+likeEscape, containsPattern(p.Author))
	}

	if p.MinClaps != nil {
		q = q.Where("claps >= ?", *p.MinClaps)
	}

	for _, token := range p.Tokens {
		conds := []string{"search_text LIKE ?" + likeEscape}
		args := []interface{}{containsPattern(token)}
		if numeric, n, ok := numericToken(token); numeric {
			if ok {
				conds = append(conds, "claps = ?")
				args = append(args, n)
			}
			conds = append(conds, "read_time LIKE ?"+likeEscape)
			args = append(args, containsPattern(token))
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return q
}

// Order returns the ORDER BY clause for p: claps when requested, then creation time, then id
// in the creation-time direction so pages never overlap.
func Order(p Params) string {
	dir := "DESC"
	if p.Sort == SortOldest {
		dir = "ASC"
	}
	parts := make([]string, 0, 3)
	switch p.ClapSort {
	case ClapSortMin:
		parts = append(parts, "claps ASC")
	case ClapSortMax:
		parts = append(parts, "claps DESC")
	}
	parts = append(parts, "created_at "+dir, "id "+dir)
	return strings.Join(parts, ", ")
}

// List runs the count and the page query concurrently and assembles the page.
func List(ctx context.Context, db *gorm.DB, p Params) (Page, error) {
	var total int64
	news := make([]models.Article, 0, min(p.Limit, 100))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return Query(db.WithContext(gctx), p).Count(&total).Error
	})
	g.Go(func() error {
		return Query(db.WithContext(gctx), p).
			Order(Order(p)).
			Offset(p.Offset()).
			Limit(p.Limit).
			Find(&news).Error
	})
	if err := g.Wait(); err != nil {
		return Page{}, fmt.Errorf("list news: %w", err)
	}
	return NewPage(news, total, p), nil
}

// numericToken reports whether token is all digits and, if it fits, its value.
func numericToken(token string) (numeric bool, n int64, ok bool) {
	if !textnorm.IsNumeric(token) {
		return false, 0, false
	}
	n, err := strconv.ParseInt(token, 10, 64)
	return true, n, err == nil
}
