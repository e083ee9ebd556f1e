package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Aman-1206/Joblink/internal/pkg/token"
	"github.com/Aman-1206/Joblink/internal/service"
	"github.com/Aman-1206/Joblink/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

func newGoogleRouter(t *testing.T, userInfoStatus int) (*gin.Engine, *token.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := http.NewServeMux()
	provider.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`)
	})
	provider.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(userInfoStatus)
		_, _ = io.WriteString(w, `{"id":"g-123","email":"Grace@Example.com","name":"Grace"}`)
	})
	ts := httptest.NewServer(provider)
	t.Cleanup(ts.Close)

	tokens := token.NewIssuer("secret", time.Hour)
	svc := service.New(service.Deps{Store: store.NewMemory(), Tokens: tokens, HashCost: bcrypt.MinCost})
	h := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.WithGoogle(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://api.test/api/auth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: ts.URL + "/auth", TokenURL: ts.URL + "/token"},
	}, "http://app.test/")
	h.userInfoURL = ts.URL + "/userinfo"

	r := gin.New()
	r.GET("/google", h.GoogleLogin)
	r.GET("/google/callback", h.GoogleCallback)
	return r, tokens
}

func startGoogleLogin(t *testing.T, r *gin.Engine) (*http.Cookie, string) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/google", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookie, cookies[0].Name)
	assert.Equal(t, state, cookies[0].Value)
	return cookies[0], state
}

func TestGoogleCallbackIssuesToken(t *testing.T) {
	r, tokens := newGoogleRouter(t, http.StatusOK)
	cookie, state := startGoogleLogin(t, r)

	req := httptest.NewRequest(http.MethodGet, "/google/callback?code=abc&state="+state, nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app.test", loc.Host)
	assert.Equal(t, "/auth/callback", loc.Path)

	claims, err := tokens.Parse(loc.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "student", claims.Role)
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	r, _ := newGoogleRouter(t, http.StatusOK)
	cookie, _ := startGoogleLogin(t, r)

	req := httptest.NewRequest(http.MethodGet, "/google/callback?code=abc&state=forged", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://app.test/login?error=google_failed", w.Header().Get("Location"))
}

func TestGoogleCallbackUserInfoFailure(t *testing.T) {
	r, _ := newGoogleRouter(t, http.StatusInternalServerError)
	cookie, state := startGoogleLogin(t, r)

	req := httptest.NewRequest(http.MethodGet, "/google/callback?code=abc&state="+state, nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.True(t, strings.HasSuffix(w.Header().Get("Location"), "/login?error=google_failed"))
}
