package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/utils"
)

// CommentController handles reader comments on articles.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

type commentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000"`
}

// ListComments returns an article's comments, newest first, with their authors.
func (c *CommentController) ListComments(ctx *gin.Context) {
	newsID, ok := parseID(ctx, "id", 40010, "invalid news id")
	if !ok {
		return
	}
	if !c.articleExists(ctx, newsID) {
		return
	}

	comments := make([]models.Comment, 0)
	if err := c.db.WithContext(ctx.Request.Context()).
		Preload("User").
		Where("article_id = ?", newsID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error; err != nil {
		serverError(ctx, 50020, "list_comments", "failed to fetch comments", err)
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// CreateComment adds a comment by the current user and bumps the article's comment count.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	newsID, ok := parseID(ctx, "id", 40010, "invalid news id")
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "authentication required")
		return
	}
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "content required")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40020, "content required")
		return
	}
	if !c.articleExists(ctx, newsID) {
		return
	}

	comment := models.Comment{ArticleID: newsID, UserID: userID, Content: content}
	db := c.db.WithContext(ctx.Request.Context())
	if err := db.Omit("User").Create(&comment).Error; err != nil {
		serverError(ctx, 50021, "create_comment", "failed to create comment", err)
		return
	}
	if err := db.Model(&models.Article{}).Where("id = ?", newsID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error; err != nil {
		utils.Sugar.Warnf("comment count increment failed news=%d err=%v", newsID, err)
	}
	if err := db.First(&comment.User, userID).Error; err != nil {
		utils.Sugar.Warnf("load comment author failed user=%d err=%v", userID, err)
	}
	utils.Created(ctx, comment)
}

// UpdateComment lets the author or an admin change a comment's content.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	comment, ok := c.loadOwnedComment(ctx)
	if !ok {
		return
	}
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "content required")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40020, "content required")
		return
	}

	comment.Content = content
	db := c.db.WithContext(ctx.Request.Context())
	if err := db.Model(&comment).Update("content", content).Error; err != nil {
		serverError(ctx, 50022, "update_comment", "failed to update comment", err)
		return
	}
	if err := db.First(&comment.User, comment.UserID).Error; err != nil {
		utils.Sugar.Warnf("load comment author failed user=%d err=%v", comment.UserID, err)
	}
	utils.Success(ctx, comment)
}

// DeleteComment lets the author or an admin remove a comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	comment, ok := c.loadOwnedComment(ctx)
	if !ok {
		return
	}

	db := c.db.WithContext(ctx.Request.Context())
	if err := db.Delete(&comment).Error; err != nil {
		serverError(ctx, 50023, "delete_comment", "failed to delete comment", err)
		return
	}
	if err := db.Model(&models.Article{}).Where("id = ?", comment.ArticleID).
		UpdateColumn("comment_count", gorm.Expr("CASE WHEN comment_count > 0 THEN comment_count - 1 ELSE 0 END")).Error; err != nil {
		utils.Sugar.Warnf("comment count decrement failed news=%d err=%v", comment.ArticleID, err)
	}
	utils.Success(ctx, gin.H{"message": "Comment deleted"})
}

// loadOwnedComment resolves :id and checks that the caller wrote it or is an admin.
func (c *CommentController) loadOwnedComment(ctx *gin.Context) (models.Comment, bool) {
	var comment models.Comment
	id, ok := parseID(ctx, "id", 40021, "invalid comment id")
	if !ok {
		return comment, false
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "authentication required")
		return comment, false
	}

	err := c.db.WithContext(ctx.Request.Context()).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
		return comment, false
	}
	if err != nil {
		serverError(ctx, 50024, "load_comment", "failed to load comment", err)
		return comment, false
	}
	if comment.UserID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "not authorized")
		return comment, false
	}
	return comment, true
}

func (c *CommentController) articleExists(ctx *gin.Context, id uint) bool {
	var n int64
	if err := c.db.WithContext(ctx.Request.Context()).Model(&models.Article{}).Where("id = ?", id).Count(&n).Error; err != nil {
		serverError(ctx, 50025, "load_news", "failed to load news article", err)
		return false
	}
	if n == 0 {
		utils.Error(ctx, http.StatusNotFound, 40410, "news article not found")
		return false
	}
	return true
}
