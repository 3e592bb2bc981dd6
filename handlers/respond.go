package handlers

import (
	"github.com/gin-gonic/gin"

	"homechef-api/apperrors"
)

// writeError renders any engine error with its stable machine-readable
// code, so calling UIs can branch on "code" instead of parsing messages.
func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"code":  apperrors.CodeOf(err),
		"error": err.Error(),
	})
}
