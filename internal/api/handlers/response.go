package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/query"
)

// listResponse is the envelope of every list endpoint.
type listResponse[T any] struct {
	Success     bool  `json:"success"`
	Count       int64 `json:"count"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Data        []T   `json:"data"`
}

func sendList[T any](c *gin.Context, res *query.Result[T]) {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, listResponse[T]{
		Success:     true,
		Count:       res.Count,
		TotalPages:  res.TotalPages(),
		CurrentPage: res.Page,
		Data:        items,
	})
}

func sendData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// sendError writes the error envelope. Validation errors list every
// violation; anything that is not an AppError becomes a generic 500 and the
// real error is attached to the context for the request logger.
func sendError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg := "internal server error"
		if appErr.Type == apperrors.ErrorTypeExternal {
			msg = appErr.Message
		}
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}
	if len(appErr.Details) > 0 {
		c.JSON(status, gin.H{"success": false, "error": appErr.Details})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": appErr.Message})
}

// bindJSON decodes the body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		sendError(c, apperrors.NewValidationError("invalid request body"))
		return false
	}
	return true
}

// pathID parses the :id parameter. Malformed ids answer 404.
func pathID(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		sendError(c, apperrors.NewNotFoundError(entity+" not found"))
		return 0, false
	}
	return id, true
}
