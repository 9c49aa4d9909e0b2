package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit_Level(t *testing.T) {
	Init(config.LogConfig{Level: "debug", Format: "text"})
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	Init(config.LogConfig{Level: "nonsense"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
