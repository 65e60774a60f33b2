package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/finnews/finnews/feed"
	"github.com/finnews/finnews/metrics"
	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/textnorm"
	"github.com/finnews/finnews/utils"
)

const (
	defaultTrendingLimit = 3
	maxTrendingLimit     = 50
)

// NewsController serves the article feed and admin article management.
type NewsController struct {
	db *gorm.DB
}

// NewNewsController creates a new NewsController instance.
func NewNewsController(db *gorm.DB) *NewsController {
	return &NewsController{db: db}
}

type createArticleRequest struct {
	Title       string   `json:"title" binding:"required,notblank,max=255"`
	Description string   `json:"description" binding:"required,notblank"`
	Category    string   `json:"category" binding:"required,notblank,max=64"`
	Date        string   `json:"date" binding:"max=64"`
	Image       string   `json:"image" binding:"max=1024"`
	Author      string   `json:"author" binding:"max=128"`
	ReadTime    string   `json:"readTime" binding:"max=64"`
	Claps       int64    `json:"claps" binding:"min=0"`
	Tags        []string `json:"tags" binding:"max=32,dive,max=64"`
}

type updateArticleRequest struct {
	Title       string    `json:"title" binding:"max=255"`
	Description string    `json:"description"`
	Category    string    `json:"category" binding:"max=64"`
	Date        string    `json:"date" binding:"max=64"`
	Image       string    `json:"image" binding:"max=1024"`
	Author      string    `json:"author" binding:"max=128"`
	ReadTime    string    `json:"readTime" binding:"max=64"`
	Tags        *[]string `json:"tags" binding:"omitempty,max=32,dive,max=64"`
}

// ListNews returns one page of the feed. Malformed query values never fail the request.
func (n *NewsController) ListNews(ctx *gin.Context) {
	page, err := feed.List(ctx.Request.Context(), n.db, feed.ParseParams(ctx.Request.URL.Query()))
	if err != nil {
		serverError(ctx, 50010, "list_news", "failed to fetch news", err)
		return
	}
	utils.Success(ctx, page)
}

// Trending returns the most clapped articles, newest first among equals.
func (n *NewsController) Trending(ctx *gin.Context) {
	limit := defaultTrendingLimit
	if v, err := strconv.Atoi(strings.TrimSpace(ctx.Query("limit"))); err == nil && v > 0 {
		limit = min(v, maxTrendingLimit)
	}

	news := make([]models.Article, 0, limit)
	if err := n.db.WithContext(ctx.Request.Context()).
		Order("claps DESC, created_at DESC, id DESC").
		Limit(limit).
		Find(&news).Error; err != nil {
		serverError(ctx, 50011, "trending_news", "failed to fetch trending news", err)
		return
	}
	utils.Success(ctx, gin.H{"news": news})
}

// GetNews returns a single article.
func (n *NewsController) GetNews(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", 40010, "invalid news id")
	if !ok {
		return
	}
	article, ok := n.loadArticle(ctx, id)
	if !ok {
		return
	}
	utils.Success(ctx, article)
}

// CreateNews stores a new article. Text fields are stripped of markup.
func (n *NewsController) CreateNews(ctx *gin.Context) {
	var req createArticleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	article := models.Article{
		Title:       utils.StripTags(req.Title),
		Description: utils.StripTags(req.Description),
		Category:    utils.StripTags(req.Category),
		Date:        strings.TrimSpace(req.Date),
		Image:       strings.TrimSpace(req.Image),
		Author:      utils.StripTags(req.Author),
		ReadTime:    utils.StripTags(req.ReadTime),
		Claps:       req.Claps,
		Tags:        models.Tags(textnorm.NormalizeTags(req.Tags)),
	}
	if article.Title == "" || article.Description == "" || article.Category == "" {
		utils.Error(ctx, http.StatusBadRequest, 40012, "title, description and category are required")
		return
	}
	if article.Date == "" {
		article.Date = time.Now().UTC().Format("2006-01-02")
	}

	if err := n.db.WithContext(ctx.Request.Context()).Create(&article).Error; err != nil {
		serverError(ctx, 50012, "create_news", "failed to create news article", err)
		return
	}
	utils.Created(ctx, article)
}

// UpdateNews replaces every non-empty field of the request; tags are replaced when present.
func (n *NewsController) UpdateNews(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", 40010, "invalid news id")
	if !ok {
		return
	}
	var req updateArticleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	article, ok := n.loadArticle(ctx, id)
	if !ok {
		return
	}

	replace := func(dst *string, v string) {
		if v = utils.StripTags(v); v != "" {
			*dst = v
		}
	}
	replace(&article.Title, req.Title)
	replace(&article.Description, req.Description)
	replace(&article.Category, req.Category)
	replace(&article.Author, req.Author)
	replace(&article.ReadTime, req.ReadTime)
	if v := strings.TrimSpace(req.Date); v != "" {
		article.Date = v
	}
	if v := strings.TrimSpace(req.Image); v != "" {
		article.Image = v
	}
	if req.Tags != nil {
		article.Tags = models.Tags(textnorm.NormalizeTags(*req.Tags))
	}

	// claps and comment_count are left out so concurrent claps are never overwritten
	err := n.db.WithContext(ctx.Request.Context()).Model(&article).
		Select("title", "description", "category", "date", "image", "author", "author_key",
			"read_time", "tags", "search_text").
		Updates(&article).Error
	if err != nil {
		serverError(ctx, 50013, "update_news", "failed to update news article", err)
		return
	}
	utils.Success(ctx, article)
}

// DeleteNews removes an article and its comments.
func (n *NewsController) DeleteNews(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", 40010, "invalid news id")
	if !ok {
		return
	}
	article, ok := n.loadArticle(ctx, id)
	if !ok {
		return
	}

	if err := n.db.WithContext(ctx.Request.Context()).Select("Comments").Delete(&article).Error; err != nil {
		serverError(ctx, 50014, "delete_news", "failed to delete news article", err)
		return
	}
	utils.Success(ctx, gin.H{"message": "News article removed"})
}

// ClapNews adds one clap with a single UPDATE so concurrent claps are not lost.
func (n *NewsController) ClapNews(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", 40010, "invalid news id")
	if !ok {
		return
	}

	res := n.db.WithContext(ctx.Request.Context()).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("claps", gorm.Expr("claps + ?", 1))
	if res.Error != nil {
		serverError(ctx, 50015, "clap_news", "failed to clap for news article", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40410, "news article not found")
		return
	}
	metrics.ClapsTotal.Inc()

	article, ok := n.loadArticle(ctx, id)
	if !ok {
		return
	}
	utils.Success(ctx, article)
}

// loadArticle fetches an article by id, answering 404 or 500 itself when it cannot.
func (n *NewsController) loadArticle(ctx *gin.Context, id uint) (models.Article, bool) {
	var article models.Article
	err := n.db.WithContext(ctx.Request.Context()).First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40410, "news article not found")
		return article, false
	}
	if err != nil {
		serverError(ctx, 50016, "load_news", "failed to load news article", err)
		return article, false
	}
	return article, true
}
