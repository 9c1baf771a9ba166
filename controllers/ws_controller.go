package controllers

import (
	"github.com/gin-gonic/gin"

	"medical-app/services"
)

// WSController hands the upgrade off to the websocket service.
func WSController(ws *services.WSService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ws.HandleWebSocket(ctx)
	}
}
