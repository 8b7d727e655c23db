package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialhub/internal/identity"
	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_AuthRequired(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateUser(t, ts.db, "alice")

	other := identity.NewJWTVerifier(testSecret, "someone-else", testAudience)
	foreign, err := other.Issue(identity.Identity{SubjectID: "alice"}, time.Hour)
	require.NoError(t, err)
	expired, err := ts.verifier.Issue(identity.Identity{SubjectID: "alice"}, -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		cookie         string
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + ts.token("alice"),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid Token via Cookie",
			cookie:         ts.token("alice"),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing Token",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Authorization required",
		},
		{
			name:           "Wrong Scheme",
			authHeader:     "Basic " + ts.token("alice"),
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Authorization required",
		},
		{
			name:           "Wrong Issuer",
			authHeader:     "Bearer " + foreign,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid or expired token",
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + expired,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid or expired token",
		},
		{
			name:           "Garbage",
			authHeader:     "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			res := ts.send(req)
			assert.Equal(t, tt.expectedStatus, res.Status)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, res.Body["message"])
			} else {
				assert.Equal(t, "alice", res.Body["id"])
			}
		})
	}
}

func TestServer_AuthRequired_CreatesUserOnFirstSight(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(http.MethodGet, "/api/users/me", ts.token("sub-new"), nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, "sub-new", res.Body["id"])
	assert.Equal(t, "sub_new", res.Body["username"])

	var n int64
	require.NoError(t, ts.db.Model(&models.User{}).Where("id = ?", "sub-new").Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// A second request reuses the row.
	res = ts.do(http.MethodGet, "/api/users/me", ts.token("sub-new"), nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	require.NoError(t, ts.db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestServer_OptionalAuth(t *testing.T) {
	ts := newTestServer(t)

	// The FOLLOWING tab needs a caller; an invalid token is anonymous.
	res := ts.do(http.MethodGet, "/api/posts?tab=FOLLOWING", "bogus", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)
	assert.Equal(t, "Login required for FOLLOWING feed", res.Body["message"])

	res = ts.do(http.MethodGet, "/api/posts?tab=FOLLOWING", ts.token("alice"), nil)
	assert.Equal(t, fiber.StatusOK, res.Status)
	assert.Empty(t, items(t, res.Body, "posts"))
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateUser(t, ts.db, "alice")

	res := ts.do(http.MethodGet, "/api/users/u_alice", "", nil)
	assert.Equal(t, fiber.StatusOK, res.Status)

	res = ts.do(http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, fiber.StatusOK, res.Status)
}
