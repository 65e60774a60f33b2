package feed

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finnews/finnews/config"
	"github.com/finnews/finnews/models"
)

var base = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

func fixtures() []models.Article {
	return []models.Article{
		{Title: "Tech Giants Report Record Earnings", Description: "Quarterly results beat expectations.", Category: "Technology", Author: "Sarah Chen", ReadTime: "5 min read", Claps: 2340, Tags: models.Tags{"trending"}, CreatedAt: base.Add(1 * time.Hour)},
		{Title: "Stock Market Reaches All-Time High", Description: "Global markets surge.", Category: "Markets", Author: "James Wilson", ReadTime: "7 min read", Claps: 1856, Tags: models.Tags{"Trending", " featured "}, CreatedAt: base.Add(2 * time.Hour)},
		{Title: "Cryptocurrency Volatility Continues", Description: "Digital assets fluctuate.", Category: "Crypto", Author: "Alex Morgan", ReadTime: "6 min read", Claps: 2, Tags: models.Tags{"trending", "featured"}, CreatedAt: base.Add(3 * time.Hour)},
		{Title: "Banking Sector Shows Resilience", Description: "Strong fundamentals.", Category: "Finance", Author: "Emma Richardson", ReadTime: "8 min read", Claps: 1543, Tags: models.Tags{"featured"}, CreatedAt: base.Add(3 * time.Hour)},
		{Title: "New Regulations Impact Crypto Exchanges", Description: "Compliance programs grow.", Category: "Crypto", Author: "Samir Rao", ReadTime: "12 min read", Claps: 975, CreatedAt: base.Add(4 * time.Hour)},
		{Title: "Crédit Markets Cool", Description: "Spreads narrow after rally.", Category: "Markets", Author: "Zoë Dupont", ReadTime: "4 min read", Claps: 2, CreatedAt: base.Add(5 * time.Hour)},
		{Title: "Oil Prices Stabilize", Description: "Energy markets 100% calm.", Category: "Energy", Author: "Michael Torres", ReadTime: "5 min read", Claps: 892, Tags: models.Tags{"featured"}, CreatedAt: base.Add(6 * time.Hour)},
		{Title: "Crypto ETFs Draw Inflows", Description: "Funds attract cash.", Category: "Crypto", Author: "Sarah Connor", ReadTime: "3 min read", Claps: 1856, Tags: models.Tags{"trending"}, CreatedAt: base.Add(7 * time.Hour)},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: filepath.Join(t.TempDir(), "feed.db"),
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func seeded(t *testing.T) (*gorm.DB, []models.Article) {
	t.Helper()
	db := newTestDB(t)
	rows := fixtures()
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
	var all []models.Article
	require.NoError(t, db.Order("id").Find(&all).Error)
	return db, all
}

func list(t *testing.T, db *gorm.DB, q string) Page {
	t.Helper()
	v, err := url.ParseQuery(q)
	require.NoError(t, err)
	page, err := List(context.Background(), db, ParseParams(v))
	require.NoError(t, err)
	return page
}

func titles(page Page) []string {
	out := make([]string, len(page.News))
	for i, a := range page.News {
		out[i] = a.Title
	}
	return out
}

func ids(page Page) []uint {
	out := make([]uint, len(page.News))
	for i, a := range page.News {
		out[i] = a.ID
	}
	return out
}

func TestList_NoFiltersNewestFirst(t *testing.T) {
	db, _ := seeded(t)
	page := list(t, db, "")

	assert.EqualValues(t, 8, page.Total)
	assert.EqualValues(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.News, 8)
	assert.Equal(t, "Crypto ETFs Draw Inflows", page.News[0].Title)
	assert.Equal(t, "Tech Giants Report Record Earnings", page.News[7].Title)
	// equal creation time: higher id first when newest
	assert.Equal(t, []string{"Banking Sector Shows Resilience", "Cryptocurrency Volatility Continues"}, titles(page)[4:6])
}

func TestList_TagsAnyOf(t *testing.T) {
	db, _ := seeded(t)
	page := list(t, db, "filters=featured,trending&limit=50")

	assert.EqualValues(t, 6, page.Total)
	for _, a := range page.News {
		assert.True(t, a.Tags.Has("featured") || a.Tags.Has("trending"), a.Title)
	}

	page = list(t, db, "filters=FEATURED")
	assert.EqualValues(t, 4, page.Total)
}

func TestList_AuthorCaseInsensitiveSubstring(t *testing.T) {
	db, _ := seeded(t)
	page := list(t, db, "author=SARAH")

	assert.ElementsMatch(t, []string{"Tech Giants Report Record Earnings", "Crypto ETFs Draw Inflows"}, titles(page))
}

func TestList_MinClaps(t *testing.T) {
	db, _ := seeded(t)
	page := list(t, db, "minClaps=1856")

	assert.EqualValues(t, 3, page.Total)
	for _, a := range page.News {
		assert.GreaterOrEqual(t, a.Claps, int64(1856))
	}
}

func TestList_TokensAllOf(t *testing.T) {
	db, _ := seeded(t)

	page := list(t, db, "q=crypto+2")
	for _, a := range page.News {
		text := strings.ToLower(a.Title + a.Description + a.Author + a.Category)
		assert.Contains(t, text, "crypto")
		assert.True(t, a.Claps == 2 || strings.Contains(a.ReadTime, "2"), a.Title)
	}
	assert.ElementsMatch(t, []string{"Cryptocurrency Volatility Continues", "New Regulations Impact Crypto Exchanges"}, titles(page))

	page = list(t, db, "q=credit")
	assert.Equal(t, []string{"Crédit Markets Cool"}, titles(page), "diacritics are folded")

	page = list(t, db, "q=100%25")
	assert.Equal(t, []string{"Oil Prices Stabilize"}, titles(page), "punctuation is stripped")

	page = list(t, db, "q=+++")
	assert.EqualValues(t, 8, page.Total, "blank query is ignored")
}

func TestList_NumericTokenMatchesClapsExactly(t *testing.T) {
	db, _ := seeded(t)
	page := list(t, db, "q=1856")

	assert.ElementsMatch(t, []string{"Stock Market Reaches All-Time High", "Crypto ETFs Draw Inflows"}, titles(page))
}

func TestList_ClapSort(t *testing.T) {
	db, _ := seeded(t)

	page := list(t, db, "clapSort=max")
	for i := 1; i < len(page.News); i++ {
		assert.GreaterOrEqual(t, page.News[i-1].Claps, page.News[i].Claps)
	}
	// tie on 1856 broken by creation time, newest first
	assert.Equal(t, []string{"Tech Giants Report Record Earnings", "Crypto ETFs Draw Inflows", "Stock Market Reaches All-Time High"}, titles(page)[:3])

	page = list(t, db, "clapSort=min&sort=oldest")
	for i := 1; i < len(page.News); i++ {
		assert.LessOrEqual(t, page.News[i-1].Claps, page.News[i].Claps)
	}
	assert.Equal(t, []string{"Cryptocurrency Volatility Continues", "Crédit Markets Cool"}, titles(page)[:2])
}

func TestList_PaginationProperties(t *testing.T) {
	db, _ := seeded(t)

	for limit := 1; limit <= 9; limit++ {
		total := int64(8)
		wantPages := max(1, (total+int64(limit)-1)/int64(limit))
		seen := map[uint]bool{}
		for pageNo := 1; pageNo <= int(wantPages); pageNo++ {
			page := list(t, db, fmt.Sprintf("limit=%d&page=%d", limit, pageNo))
			assert.Equal(t, wantPages, page.TotalPages)
			assert.LessOrEqual(t, len(page.News), limit)
			if pageNo == int(wantPages) {
				want := int(total) % limit
				if want == 0 {
					want = limit
				}
				assert.Len(t, page.News, want, "last page limit=%d", limit)
			}
			for _, a := range page.News {
				assert.False(t, seen[a.ID], "article %d repeated across pages", a.ID)
				seen[a.ID] = true
			}
		}
		assert.Len(t, seen, 8)
	}

	page := list(t, db, "page=99")
	assert.Empty(t, page.News)
	assert.Equal(t, 99, page.CurrentPage)
}

func TestFilter_MatchesList(t *testing.T) {
	db, all := seeded(t)
	queries := []string{
		"",
		"limit=3&page=2",
		"filters=featured,trending",
		"filters=featured&sort=oldest",
		"author=sarah&clapSort=max",
		"minClaps=900&clapSort=min",
		"q=crypto+2",
		"q=markets&sort=oldest&limit=2",
		"q=credit",
		"q=1856&clapSort=max",
		"filters=trending&q=crypto&minClaps=1",
		"clapSort=max&limit=4&page=2",
		"page=abc&limit=zz",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			v, err := url.ParseQuery(q)
			require.NoError(t, err)
			p := ParseParams(v)

			fromDB, err := List(context.Background(), db, p)
			require.NoError(t, err)
			inMemory := Filter(all, p)

			assert.Equal(t, ids(fromDB), ids(inMemory))
			assert.Equal(t, fromDB.Total, inMemory.Total)
			assert.Equal(t, fromDB.TotalPages, inMemory.TotalPages)
			assert.Equal(t, fromDB.CurrentPage, inMemory.CurrentPage)
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	_, all := seeded(t)
	before := make([]uint, len(all))
	for i, a := range all {
		before[i] = a.ID
	}

	Filter(all, Params{Page: 1, Limit: 3, ClapSort: ClapSortMax, Sort: SortNewest})

	for i, a := range all {
		assert.Equal(t, before[i], a.ID)
	}
}

func TestFilter_DisplayDateFallback(t *testing.T) {
	snapshot := []models.Article{
		{ID: 1, Title: "a", Date: "Nov 10, 2025"},
		{ID: 3, Title: "c", Date: "Nov 12, 2025"},
		{ID: 4, Title: "d", Date: "2025-11-11"},
	}

	page := Filter(snapshot, Params{Page: 1, Limit: 10, Sort: SortNewest})
	assert.Equal(t, []uint{3, 4, 1}, ids(page))
	page = Filter(snapshot, Params{Page: 1, Limit: 10, Sort: SortOldest})
	assert.Equal(t, []uint{1, 4, 3}, ids(page))
}

func TestFilter_UnparseableDatesKeepInputOrder(t *testing.T) {
	snapshot := []models.Article{
		{ID: 7, Title: "x", Date: "yesterday"},
		{ID: 2, Title: "y", Date: ""},
		{ID: 5, Title: "z", Date: "soon"},
	}

	page := Filter(snapshot, Params{Page: 1, Limit: 10, Sort: SortNewest})
	assert.Equal(t, []uint{7, 2, 5}, ids(page))
}
