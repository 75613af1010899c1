// Package httpapi is the HTTP surface of the service: gin handlers, input
// validation, and the error-to-status mapping. All protocol decisions live
// in the services; this package only translates.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	UserHandler    *UserHandler
	PartyHandler   *PartyHandler
	MediaHandler   *MediaHandler
	OverlayHandler *OverlayHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "OK"})
	})

	api := router.Group("/api")
	{
		api.POST("/register", cfg.UserHandler.Register)
		api.POST("/offline", cfg.UserHandler.Offline)
		api.GET("/stats", cfg.UserHandler.Stats)

		party := api.Group("/party")
		{
			party.POST("/start", cfg.PartyHandler.Start)
			party.POST("/join", cfg.PartyHandler.Join)
			party.POST("/leave", cfg.PartyHandler.Leave)
			party.POST("/status", cfg.PartyHandler.Status)
			party.POST("/update", cfg.PartyHandler.Update)
		}

		media := api.Group("/media")
		{
			media.POST("/token", cfg.MediaHandler.Token)
			media.POST("/refresh", cfg.MediaHandler.Refresh)
			media.POST("/clientid", cfg.MediaHandler.ClientID)
		}

		overlay := api.Group("/overlay")
		{
			overlay.GET("/track", cfg.OverlayHandler.Track)
			overlay.POST("/update", cfg.OverlayHandler.Update)
		}
	}

	return router
}
