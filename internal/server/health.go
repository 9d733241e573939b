package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/textcipher-go/internal/config"
	"github.com/textcipher-go/internal/encryption"
)

var startTime = time.Now()

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string   `json:"status"`
	Version      string   `json:"version"`
	Uptime       string   `json:"uptime"`
	GoVersion    string   `json:"go_version"`
	NumGoroutine int      `json:"num_goroutine"`
	MemAlloc     uint64   `json:"mem_alloc_mb"`
	Methods      []string `json:"methods"`
}

// HealthHandler returns server health status
func HealthHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	registered := encryption.ListRegistered()
	methods := make([]string, 0, len(registered))
	for _, method := range registered {
		methods = append(methods, method.String())
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		Version:      config.Version,
		Uptime:       time.Since(startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     m.Alloc / 1024 / 1024, // MB
		Methods:      methods,
	})
}

// ReadyHandler reports ready once the history store is open
func (s *Server) ReadyHandler(c *gin.Context) {
	if s.cfg.History.Enable && s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
