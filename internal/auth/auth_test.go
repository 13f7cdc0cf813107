package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueAndValidate(t *testing.T) {
	m, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	id := uuid.New()
	token, err := m.Issue(id)
	require.NoError(t, err)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer, _ := NewTokenManager("one", time.Hour)
	checker, _ := NewTokenManager("two", time.Hour)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = checker.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	m, _ := NewTokenManager("test-secret", time.Minute)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, err := m.Issue(uuid.New())
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m, _ := NewTokenManager("test-secret", 0)
	_, err := m.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer "))
	assert.Empty(t, bearerToken(""))
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m, _ := NewTokenManager("test-secret", time.Hour)
	id := uuid.New()
	token, err := m.Issue(id)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/sessions/:id", RequireSession(m), func(c *gin.Context) {
		got, _ := c.Get(SessionKey)
		c.JSON(http.StatusOK, gin.H{"session_id": got})
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"valid header", "/sessions/" + id.String(), "Bearer " + token, http.StatusOK},
		{"valid query", "/sessions/" + id.String() + "?token=" + token, "", http.StatusOK},
		{"missing", "/sessions/" + id.String(), "", http.StatusUnauthorized},
		{"invalid", "/sessions/" + id.String(), "Bearer nope", http.StatusUnauthorized},
		{"other session", "/sessions/" + uuid.NewString(), "Bearer " + token, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/admin", RequireAdmin("s3cret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for name, tc := range map[string]struct {
		header, value string
		status        int
	}{
		"header":  {"X-Admin-Token", "s3cret", http.StatusOK},
		"bearer":  {"Authorization", "Bearer s3cret", http.StatusOK},
		"wrong":   {"X-Admin-Token", "nope", http.StatusUnauthorized},
		"missing": {"", "", http.StatusUnauthorized},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
