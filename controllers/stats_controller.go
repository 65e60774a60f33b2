package controllers

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/utils"
)

// StatsController provides site statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns article, comment and user counts plus the total number of claps.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var articles, comments, users, claps int64
	db := s.db.WithContext(ctx.Request.Context())

	var g errgroup.Group
	g.Go(func() error { return db.Model(&models.Article{}).Count(&articles).Error })
	g.Go(func() error { return db.Model(&models.Comment{}).Count(&comments).Error })
	g.Go(func() error { return db.Model(&models.User{}).Count(&users).Error })
	g.Go(func() error {
		return db.Model(&models.Article{}).Select("COALESCE(SUM(claps), 0)").Scan(&claps).Error
	})
	if err := g.Wait(); err != nil {
		// Fallback to partial counts instead of failing the whole endpoint
		utils.Sugar.Warnf("stats query failed: %v", err)
	}

	utils.Success(ctx, gin.H{
		"articles": articles,
		"comments": comments,
		"users":    users,
		"claps":    claps,
	})
}
