package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calebmah/streamchat/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestSetupRouter(t *testing.T) {
	router := setupRouter(services.InitializeServices())

	t.Run("login surface is reachable anonymously", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("chat surface is gated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?from=%2Fchat", w.Header().Get("Location"))
	})

	t.Run("root redirects towards chat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusFound, w.Code)
	})
}
