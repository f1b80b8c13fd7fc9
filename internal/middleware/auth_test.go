package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/internal/middleware"
)

type loginCheckerMock struct {
	sessions map[string]string // token -> character id
	err      error
}

func (m *loginCheckerMock) CharacterID(_ context.Context, token string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	characterID, ok := m.sessions[token]
	if !ok {
		return "", auth.ErrNotLoggedIn
	}
	return characterID, nil
}

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	checker := &loginCheckerMock{sessions: map[string]string{
		"valid-token": "char-1",
	}}
	authMiddleware := middleware.NewAuthMiddlewareHandler(checker)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
		expectCharacterID  string
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/leaderboard",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "LoginWithoutToken",
			path:               "/a/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AvatarImageWithoutToken",
			path:               "/avatars/hunter1.png",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AvatarListWithoutToken",
			path:               "/avatars",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "CustomAvatarWithoutToken",
			path:               "/avatars/me",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "CustomAvatarUploadWithValidToken",
			path:               "/avatars/me",
			method:             "POST",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
			expectCharacterID:  "char-1",
		},
		{
			name:               "ProtectedPathWithoutToken",
			path:               "/hunter/me",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidToken",
			path:               "/hunter/me",
			method:             "GET",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
			expectCharacterID:  "char-1",
		},
		{
			name:               "InvalidToken",
			path:               "/hunter/me",
			method:             "GET",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Options",
			path:               "/hunter/me",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			require.NoError(t, err)
			if tc.token != "" {
				req.Header.Add(auth.TokenHeader, tc.token)
			}

			var seenCharacterID string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenCharacterID, _ = auth.CharacterIDFromContext(r.Context())
			})

			rr := httptest.NewRecorder()
			authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectCharacterID != "" {
				assert.Equal(t, tc.expectCharacterID, seenCharacterID)
			}
		})
	}
}

func TestAuthMiddlewareHandler_checkerError(t *testing.T) {
	checker := &loginCheckerMock{err: errors.New("redis down")}
	authMiddleware := middleware.NewAuthMiddlewareHandler(checker)

	req, err := http.NewRequest("GET", "/hunter/me", nil)
	require.NoError(t, err)
	req.Header.Add(auth.TokenHeader, "some-token")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
