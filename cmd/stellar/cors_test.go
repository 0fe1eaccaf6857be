package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		inner    http.HandlerFunc
		wantCode int
		wantBody string
	}{
		{
			name:   "success",
			method: http.MethodGet,
			inner: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"ok"}`))
			},
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok"}`,
		},
		{
			name:   "error response keeps headers",
			method: http.MethodPost,
			inner: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "output device busy", http.StatusBadGateway)
			},
			wantCode: http.StatusBadGateway,
			wantBody: "output device busy\n",
		},
		{
			name:   "preflight short-circuits",
			method: http.MethodOptions,
			inner: func(w http.ResponseWriter, r *http.Request) {
				t.Error("inner handler called for preflight")
			},
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			corsMiddleware(tt.inner).ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/state", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}
