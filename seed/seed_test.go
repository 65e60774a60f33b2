package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finnews/finnews/config"
	"github.com/finnews/finnews/feed"
	"github.com/finnews/finnews/models"
)

func TestArticles(t *testing.T) {
	articles, err := Articles()
	require.NoError(t, err)
	require.Len(t, articles, 20)

	assert.Equal(t, "Tech Giants Report Record Earnings", articles[0].Title)
	assert.Equal(t, models.Tags{"trending", "featured"}, articles[2].Tags)
	for i := 1; i < len(articles); i++ {
		assert.True(t, articles[i-1].CreatedAt.After(articles[i].CreatedAt), "article %d", i)
	}
}

func TestRun(t *testing.T) {
	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: filepath.Join(t.TempDir(), "seed.db"),
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	ctx := context.Background()

	n, err := Run(ctx, db, false)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = Run(ctx, db, false)
	require.NoError(t, err)
	assert.Zero(t, n, "non-empty table is left alone")

	require.NoError(t, db.Create(&models.Comment{ArticleID: 1, UserID: 1, Content: "hi"}).Error)
	n, err = Run(ctx, db, true)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	var count int64
	require.NoError(t, db.Model(&models.Article{}).Count(&count).Error)
	assert.EqualValues(t, 20, count)
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count, "reset removes comments")

	page, err := feed.List(ctx, db, feed.Params{Page: 1, Limit: 3, Tags: []string{"trending"}, Sort: feed.SortNewest})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, "Tech Giants Report Record Earnings", page.News[0].Title)
}

func TestAdmin(t *testing.T) {
	prev := config.Get()
	config.Set(config.AppConfig{BcryptCost: 4})
	t.Cleanup(func() { config.Set(prev) })

	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: filepath.Join(t.TempDir(), "admin.db"),
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	ctx := context.Background()

	_, _, err = Admin(ctx, db, "root@example.com", "123", "")
	assert.Error(t, err, "short password")

	require.NoError(t, db.Create(&models.User{Email: "reader@example.com", PasswordHash: "x", Role: models.RoleUser}).Error)
	user, created, err := Admin(ctx, db, " Reader@Example.com ", "s3cret!", "Reader")
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "Reader", user.Name)

	user, created, err = Admin(ctx, db, "root@example.com", "s3cret!", "Root")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, user.IsAdmin())

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}
