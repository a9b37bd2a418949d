package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		reqMethod   string
		reqHeaders  string
		wantStatus  int
		wantOrigin  string
		wantHeaders string
	}{
		{
			name:       "wildcard echoes origin",
			allowed:    []string{"*"},
			method:     http.MethodPost,
			origin:     "https://shop.example.com",
			wantStatus: http.StatusOK,
			wantOrigin: "https://shop.example.com",
		},
		{
			name:        "preflight post allowed",
			allowed:     []string{"*"},
			method:      http.MethodOptions,
			origin:      "http://localhost:3000",
			reqMethod:   http.MethodPost,
			reqHeaders:  "content-type, x-custom",
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "http://localhost:3000",
			wantHeaders: "content-type, x-custom",
		},
		{
			name:       "preflight delete rejected",
			allowed:    []string{"*"},
			method:     http.MethodOptions,
			origin:     "http://localhost:3000",
			reqMethod:  http.MethodDelete,
			wantStatus: http.StatusBadRequest,
			wantOrigin: "http://localhost:3000",
		},
		{
			name:       "listed origin allowed",
			allowed:    []string{"https://shop.example.com/"},
			method:     http.MethodPost,
			origin:     "https://shop.example.com",
			wantStatus: http.StatusOK,
			wantOrigin: "https://shop.example.com",
		},
		{
			name:       "unlisted origin gets no headers",
			allowed:    []string{"https://shop.example.com"},
			method:     http.MethodPost,
			origin:     "https://evil.example.net",
			wantStatus: http.StatusOK,
		},
		{
			name:       "no origin passes through",
			allowed:    []string{"*"},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/generate_tags", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.reqMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tc.reqMethod)
			}
			if tc.reqHeaders != "" {
				req.Header.Set("Access-Control-Request-Headers", tc.reqHeaders)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("allow-origin = %q, want %q", got, tc.wantOrigin)
			}
			if tc.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Fatal("expected credentials to be allowed")
			}
			if got := rec.Header().Get("Access-Control-Allow-Headers"); got != tc.wantHeaders {
				t.Fatalf("allow-headers = %q, want %q", got, tc.wantHeaders)
			}
		})
	}
}
