package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RootResponse identifies the service.
type RootResponse struct {
	OK      bool   `json:"ok" example:"true"`
	Message string `json:"message" example:"Cloudflare Telegram Bot API"`
}

// Root godoc
// @ID       root
// @Summary  Service banner
// @Tags     Meta
// @Produce  json
// @Success  200  {object}  handlers.RootResponse
// @Router   / [get]
func Root(c *gin.Context) {
	ok(c, http.StatusOK, RootResponse{OK: true, Message: "Cloudflare Telegram Bot API"})
}

// Health godoc
// @ID       health
// @Summary  Liveness probe
// @Tags     Meta
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func Health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}
