package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newTestVerifier() *JWTVerifier {
	return NewJWTVerifier(testSecret, "socialhub", "socialhub-api")
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	t.Parallel()
	v := newTestVerifier()

	token, err := v.Issue(Identity{
		SubjectID:   "user-1",
		Email:       "ada@example.com",
		DisplayName: "Ada",
		PictureURL:  "https://img.example.com/ada.png",
	}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.SubjectID)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada", id.DisplayName)
	assert.Equal(t, "https://img.example.com/ada.png", id.PictureURL)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	t.Parallel()
	v := newTestVerifier()
	now := time.Now()

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "socialhub",
			Audience:  jwt.ClaimStrings{"socialhub-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
	}

	expired := base()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	noExpiry := base()
	noExpiry.ExpiresAt = nil
	wrongIssuer := base()
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := base()
	wrongAudience.Audience = jwt.ClaimStrings{"other-api"}
	noSubject := base()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"expired", sign(jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"wrong audience", sign(jwt.SigningMethodHS256, []byte(testSecret), wrongAudience)},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte(testSecret), noSubject)},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("another-secret-another-secret-123"), base())},
		{"hs512 not allowed", sign(jwt.SigningMethodHS512, []byte(testSecret), base())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}

func TestJWTVerifier_Leeway(t *testing.T) {
	t.Parallel()
	v := newTestVerifier()

	token, err := v.Issue(Identity{SubjectID: "user-1"}, time.Minute)
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(time.Minute + 10*time.Second) }
	_, err = v.Verify(context.Background(), token)
	assert.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = v.Verify(context.Background(), token)
	assert.Error(t, err)
}
