package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finnews/finnews/metrics"
	"github.com/finnews/finnews/middleware"
	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/utils"
)

// parseID reads a positive numeric path parameter and answers 400 otherwise.
func parseID(ctx *gin.Context, param string, code int, message string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(param))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, code, message)
		return 0, false
	}
	return uint(id), true
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id > 0
}

func isAdmin(ctx *gin.Context) bool {
	return ctx.GetString(middleware.ContextRoleKey) == models.RoleAdmin
}

func getClaims(ctx *gin.Context) (*utils.Claims, bool) {
	value, exists := ctx.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.Claims)
	return claims, ok
}

// serverError logs err with the request id and answers 500 with a generic message.
func serverError(ctx *gin.Context, code int, operation, message string, err error) {
	metrics.RecordError(operation)
	utils.Sugar.Errorw(message,
		"operation", operation,
		"request_id", ctx.GetString(middleware.ContextRequestIDKey),
		"error", err,
	)
	utils.Error(ctx, http.StatusInternalServerError, code, message)
}
