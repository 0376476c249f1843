package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// envelope is the JSON shape every radar endpoint responds with. Code 0
// means success; errors echo the HTTP status.
type envelope struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Ok writes a 200 envelope. Meta is optional and carries list counters
// such as totals and paging.
func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, envelope{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

// Error writes an error envelope with the given HTTP status.
func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, envelope{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}
