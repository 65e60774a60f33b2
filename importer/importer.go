// Package importer turns RSS and Atom items into articles.
package importer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gorm.io/gorm"

	"github.com/finnews/finnews/metrics"
	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/textnorm"
	"github.com/finnews/finnews/utils"
)

const (
	wordsPerMinute  = 200
	displayLayout   = "Jan 2, 2006"
	defaultCategory = "News"
	fetchTimeout    = 30 * time.Second
)

// Options tune an import run.
type Options struct {
	Category string   // overrides the item category
	Tags     []string // added to every imported article
	Limit    int      // max items considered, 0 for all
}

// Result counts what an import run did.
type Result struct {
	Created int
	Skipped int
}

// Importer writes feed items to the articles table, skipping titles it already holds.
type Importer struct {
	db     *gorm.DB
	parser *gofeed.Parser
	now    func() time.Time
}

// New creates an Importer.
func New(db *gorm.DB) *Importer {
	return &Importer{db: db, parser: gofeed.NewParser(), now: time.Now}
}

// ImportURL fetches and imports the feed at feedURL.
func (im *Importer) ImportURL(ctx context.Context, feedURL string, opts Options) (Result, error) {
	u, err := url.Parse(feedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Result{}, fmt.Errorf("invalid feed url %q", feedURL)
	}

	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	f, err := im.parser.ParseURLWithContext(u.String(), fctx)
	if err != nil {
		return Result{}, fmt.Errorf("parse feed: %w", err)
	}
	utils.Sugar.Infof("feed fetched title=%q items=%d", f.Title, len(f.Items))
	return im.ImportFeed(ctx, f, opts)
}

// ImportFeed imports the items of an already parsed feed.
func (im *Importer) ImportFeed(ctx context.Context, f *gofeed.Feed, opts Options) (Result, error) {
	var res Result
	items := f.Items
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	seen := make(map[string]struct{}, len(items))
	db := im.db.WithContext(ctx)
	for _, item := range items {
		article := ArticleFromItem(f, item, opts, im.now())
		if article.Title == "" {
			res.Skipped++
			metrics.FeedItemsImported.WithLabelValues("skipped").Inc()
			continue
		}
		if _, dup := seen[article.Title]; dup {
			res.Skipped++
			metrics.FeedItemsImported.WithLabelValues("skipped").Inc()
			continue
		}
		seen[article.Title] = struct{}{}

		var n int64
		if err := db.Model(&models.Article{}).Where("title = ?", article.Title).Count(&n).Error; err != nil {
			return res, fmt.Errorf("check existing article: %w", err)
		}
		if n > 0 {
			res.Skipped++
			metrics.FeedItemsImported.WithLabelValues("skipped").Inc()
			continue
		}

		if err := db.Create(&article).Error; err != nil {
			metrics.FeedItemsImported.WithLabelValues("failed").Inc()
			return res, fmt.Errorf("create article %q: %w", article.Title, err)
		}
		res.Created++
		metrics.FeedItemsImported.WithLabelValues("created").Inc()
	}
	return res, nil
}

// ArticleFromItem maps one feed item to an unsaved article.
func ArticleFromItem(f *gofeed.Feed, item *gofeed.Item, opts Options, now time.Time) models.Article {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	description := utils.StripTags(item.Description)
	if description == "" {
		description = utils.StripTags(item.Content)
	}

	category := strings.TrimSpace(opts.Category)
	if category == "" && len(item.Categories) > 0 {
		category = strings.TrimSpace(item.Categories[0])
	}
	if category == "" {
		category = defaultCategory
	}

	published := now
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	return models.Article{
		Title:       utils.StripTags(item.Title),
		Description: description,
		Category:    utils.StripTags(category),
		Date:        published.Format(displayLayout),
		Image:       ImageURL(item, body),
		Author:      utils.StripTags(authorOf(f, item)),
		ReadTime:    ReadTime(utils.StripTags(body)),
		Tags:        models.Tags(textnorm.NormalizeTags(opts.Tags)),
	}
}

// ReadTime estimates reading time for plain text at 200 words per minute, at least one minute.
func ReadTime(text string) string {
	words := len(strings.Fields(text))
	minutes := max(1, (words+wordsPerMinute-1)/wordsPerMinute)
	return fmt.Sprintf("%d min read", minutes)
}

// ImageURL picks the item image, then media extensions, then image enclosures, and finally
// the first <img> in the HTML body. Only http and https URLs are accepted.
func ImageURL(item *gofeed.Item, html string) string {
	if item.Image != nil && isWebURL(item.Image.URL) {
		return item.Image.URL
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, thumb := range media["thumbnail"] {
			if u := thumb.Attrs["url"]; isWebURL(u) {
				return u
			}
		}
		for _, content := range media["content"] {
			if u := content.Attrs["url"]; content.Attrs["medium"] == "image" && isWebURL(u) {
				return u
			}
		}
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && isWebURL(enc.URL) {
			return enc.URL
		}
	}
	return firstImage(html)
}

func firstImage(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	var src string
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, _ := s.Attr("src"); isWebURL(v) {
			src = v
			return false
		}
		return true
	})
	return src
}

func authorOf(f *gofeed.Feed, item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return a.Name
		}
	}
	if f != nil {
		return f.Title
	}
	return ""
}

func isWebURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
