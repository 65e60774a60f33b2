// Package seed loads the sample articles shipped with the binary.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/finnews/finnews/feed"
	"github.com/finnews/finnews/models"
)

//go:embed articles.json
var articlesJSON []byte

// Articles returns the sample articles. Creation times follow the display dates, and
// articles sharing a date keep their listed order (earlier entries are newer).
func Articles() ([]models.Article, error) {
	var articles []models.Article
	if err := json.Unmarshal(articlesJSON, &articles); err != nil {
		return nil, fmt.Errorf("decode seed articles: %w", err)
	}
	for i := range articles {
		day, err := feed.ParseDisplayDate(articles[i].Date)
		if err != nil {
			return nil, fmt.Errorf("seed article %q: %w", articles[i].Title, err)
		}
		articles[i].CreatedAt = day.UTC().Add(12*time.Hour - time.Duration(i)*time.Minute)
	}
	return articles, nil
}

// Run inserts the sample articles and returns how many were written. A table that already
// holds articles is left alone unless reset is set, in which case articles and their
// comments are removed first.
func Run(ctx context.Context, db *gorm.DB, reset bool) (int, error) {
	articles, err := Articles()
	if err != nil {
		return 0, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reset {
			all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
			if err := all.Delete(&models.Comment{}).Error; err != nil {
				return fmt.Errorf("clear comments: %w", err)
			}
			if err := all.Delete(&models.Article{}).Error; err != nil {
				return fmt.Errorf("clear articles: %w", err)
			}
		} else {
			var n int64
			if err := tx.Model(&models.Article{}).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				articles = nil
				return nil
			}
		}
		return tx.CreateInBatches(&articles, 50).Error
	})
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}
