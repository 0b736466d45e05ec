package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/services"
)

// respondEngineError translates an ordering-engine error into the JSON error
// envelope. Config and selection violations are unprocessable input, missing
// aggregates are 404, and state-machine rejections are conflicts.
func respondEngineError(c *gin.Context, err error) {
	var cfgErr *services.ConfigError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    cfgErr.Code,
				"message": cfgErr.Message,
				"group":   cfgErr.GroupName,
			},
		})
		return
	}

	var selErr *services.SelectionError
	if errors.As(err, &selErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    selErr.Code,
				"message": selErr.Error(),
				"group":   selErr.GroupName,
				"min":     selErr.Min,
				"max":     selErr.Max,
				"chosen":  selErr.Chosen,
			},
		})
		return
	}

	var stateErr *services.StateError
	if errors.As(err, &stateErr) {
		status := http.StatusBadRequest
		switch stateErr.Code {
		case services.ErrTabNotFound, services.ErrItemNotFound:
			status = http.StatusNotFound
		case services.ErrTabNotOpen, services.ErrTabHasPayments, services.ErrInvalidStatusTransition:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    stateErr.Code,
				"message": stateErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Something went wrong processing the request",
		},
	})
}
