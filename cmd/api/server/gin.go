package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewGinServer wraps the router in an http.Server with conservative timeouts.
func NewGinServer(router *gin.Engine, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
