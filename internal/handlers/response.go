package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pashuai/pashuai-backend/internal/apierr"
)

// RespondError maps any error onto the JSON error envelope, using the tagged
// status when the error carries one and 500 otherwise.
func RespondError(c *gin.Context, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(apierr.StatusOf(err), gin.H{"error": msg})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
