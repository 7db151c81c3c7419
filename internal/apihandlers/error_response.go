package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError defines the standard error response body.
// Example: { "error": { "code": "bad_request", "message": "invalid input" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response.
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.JSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func Unprocessable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusUnprocessableEntity, "unprocessable", msg)
}

func Unavailable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusServiceUnavailable, "model_unavailable", msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, "internal_error", msg)
}
