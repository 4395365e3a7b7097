package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NetroScript/tf2pickup-server/internal/model"
)

func TestActingPlayerFromHeader(t *testing.T) {
	var got model.PlayerID
	var ok bool
	handler := ActingPlayer()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetActingPlayer(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActingPlayerHeader, " admin-1 ")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, ok)
	assert.Equal(t, model.PlayerID("admin-1"), got)
}

func TestRequireActingPlayer(t *testing.T) {
	handler := ActingPlayer()(RequireActingPlayer()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	req.Header.Set(ActingPlayerHeader, "admin-1")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
