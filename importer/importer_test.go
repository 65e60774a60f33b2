package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finnews/finnews/config"
	"github.com/finnews/finnews/models"
)

func rssFixture() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>Wire</title>
  <link>https://wire.example.com</link>
  <item>
    <title>Fed Holds Rates</title>
    <description><![CDATA[<p>The Fed held &amp; signalled <b>patience</b>.</p>]]></description>
    <pubDate>Mon, 03 Nov 2025 10:00:00 +0000</pubDate>
    <dc:creator>Jane Roe</dc:creator>
    <category>Economy</category>
    <enclosure url="https://img.example.com/fed.jpg" type="image/jpeg" length="1"/>
  </item>
  <item>
    <title>Markets Rally</title>
    <content:encoded><![CDATA[<p><img src="/relative.png"><img src="https://img.example.com/rally.png"> %s</p>]]></content:encoded>
  </item>
  <item>
    <title>Fed Holds Rates</title>
    <description>duplicate</description>
  </item>
  <item>
    <title></title>
    <description>untitled</description>
  </item>
</channel>
</rss>`, strings.Repeat("word ", 450))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: filepath.Join(t.TempDir(), "import.db"),
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, "1 min read", ReadTime(""))
	assert.Equal(t, "1 min read", ReadTime(strings.Repeat("a ", 200)))
	assert.Equal(t, "2 min read", ReadTime(strings.Repeat("a ", 201)))
}

func TestArticleFromItem(t *testing.T) {
	f, err := gofeed.NewParser().ParseString(rssFixture())
	require.NoError(t, err)
	now := time.Date(2025, 11, 5, 8, 0, 0, 0, time.UTC)

	first := ArticleFromItem(f, f.Items[0], Options{Tags: []string{" Imported "}}, now)
	assert.Equal(t, "Fed Holds Rates", first.Title)
	assert.Equal(t, "The Fed held & signalled patience.", first.Description)
	assert.Equal(t, "Economy", first.Category)
	assert.Equal(t, "Nov 3, 2025", first.Date)
	assert.Equal(t, "https://img.example.com/fed.jpg", first.Image)
	assert.Equal(t, "Jane Roe", first.Author)
	assert.Equal(t, "1 min read", first.ReadTime)
	assert.Equal(t, models.Tags{"imported"}, first.Tags)

	second := ArticleFromItem(f, f.Items[1], Options{Category: "Markets"}, now)
	assert.Equal(t, "Markets", second.Category)
	assert.Equal(t, "https://img.example.com/rally.png", second.Image, "first absolute <img> wins")
	assert.Equal(t, "Wire", second.Author, "feed title when the item has no author")
	assert.Equal(t, "Nov 5, 2025", second.Date)
	assert.Equal(t, "3 min read", second.ReadTime)
	assert.NotEmpty(t, second.Description)
}

func TestImportFeed(t *testing.T) {
	db := newTestDB(t)
	f, err := gofeed.NewParser().ParseString(rssFixture())
	require.NoError(t, err)
	im := New(db)
	im.now = func() time.Time { return time.Date(2025, 11, 5, 8, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	res, err := im.ImportFeed(ctx, f, Options{Tags: []string{"imported"}})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2, Skipped: 2}, res)

	res, err = im.ImportFeed(ctx, f, Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Skipped: 4}, res, "titles already stored are skipped")

	var stored []models.Article
	require.NoError(t, db.Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, models.Tags{"imported"}, stored[0].Tags)
	assert.Equal(t, "jane roe", stored[0].AuthorKey)
}

func TestImportFeed_Limit(t *testing.T) {
	db := newTestDB(t)
	f, err := gofeed.NewParser().ParseString(rssFixture())
	require.NoError(t, err)

	res, err := New(db).ImportFeed(context.Background(), f, Options{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1}, res)
}

func TestImportURL_RejectsBadURL(t *testing.T) {
	_, err := New(nil).ImportURL(context.Background(), "ftp://example.com/feed", Options{})
	assert.Error(t, err)
}
