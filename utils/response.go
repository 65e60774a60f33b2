package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the error envelope. Successful responses carry their payload unwrapped
// so the feed and CRUD endpoints keep the shapes the frontend reads.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes an envelope with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success writes data with 200.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, data)
}

// Created writes data with 201.
func Created(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
