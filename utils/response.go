package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Message writes the uniform {message} body used for errors and confirmations.
func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// ValidationFailure writes a {message, errors} body for rejected input.
func ValidationFailure(ctx *gin.Context, message string, errs interface{}) {
	ctx.JSON(http.StatusBadRequest, gin.H{"message": message, "errors": errs})
}
