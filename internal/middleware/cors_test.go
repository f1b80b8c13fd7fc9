package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arisefit/hunterhub/internal/middleware"
)

func TestCors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	corsHandler := middleware.Cors()(handler)

	testCases := []struct {
		name               string
		path               string
		origin             string
		userAgent          string
		expectedStatusCode int
	}{
		{
			name:               "AllowedOrigin",
			path:               "/hunter/me",
			origin:             "http://localhost:3000",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "DisallowedOrigin",
			path:               "/hunter/me",
			origin:             "https://evil.example.com",
			expectedStatusCode: http.StatusForbidden,
		},
		{
			name:               "CurlAllowed",
			path:               "/hunter/me",
			userAgent:          "curl/8.0.1",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AvatarFromAnywhere",
			path:               "/avatars/hunter1.png",
			origin:             "https://some-blog.example.com",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.userAgent != "" {
				req.Header.Set("User-Agent", tc.userAgent)
			}

			rr := httptest.NewRecorder()
			corsHandler.ServeHTTP(rr, req)
			assert.Equal(t, tc.expectedStatusCode, rr.Code)
		})
	}
}
