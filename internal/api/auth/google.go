package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateCookie         = "joblink_oauth_state"
	defaultUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleCallbackLimit = 10 * time.Second
)

// GoogleConfig builds the OAuth client configuration for Google login.
func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// WithGoogle enables Google login. Successful and failed logins redirect
// to frontendURL.
func (h *Handler) WithGoogle(cfg *oauth2.Config, frontendURL string) *Handler {
	h.google = cfg
	h.userInfoURL = defaultUserInfoURL
	h.frontendURL = strings.TrimRight(frontendURL, "/")
	return h
}

// GoogleEnabled reports whether WithGoogle was called.
func (h *Handler) GoogleEnabled() bool {
	return h.google != nil
}

type googleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleLogin redirects to Google's consent page.
//
// GET /api/auth/google
func (h *Handler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// GoogleCallback finishes Google login and hands the token to the frontend.
//
// GET /api/auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		h.googleFailed(c, fmt.Errorf("oauth state mismatch"))
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	ctx, cancel := context.WithTimeout(c.Request.Context(), googleCallbackLimit)
	defer cancel()

	tok, err := h.google.Exchange(ctx, c.Query("code"))
	if err != nil {
		h.googleFailed(c, fmt.Errorf("exchange code: %w", err))
		return
	}
	gu, err := h.fetchGoogleUser(ctx, tok)
	if err != nil {
		h.googleFailed(c, err)
		return
	}

	res, err := h.svc.LoginExternal(ctx, gu.ID, gu.Email, gu.Name)
	if err != nil {
		h.googleFailed(c, err)
		return
	}
	if h.logger != nil {
		h.logger.Info("google login", slog.String("email", gu.Email), slog.Int("user_id", int(res.User.ID)))
	}
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback?token="+url.QueryEscape(res.Token))
}

func (h *Handler) fetchGoogleUser(ctx context.Context, tok *oauth2.Token) (*googleUser, error) {
	resp, err := h.google.Client(ctx, tok).Get(h.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}
	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &gu, nil
}

func (h *Handler) googleFailed(c *gin.Context, err error) {
	if h.logger != nil {
		h.logger.Warn("google login failed", slog.String("error", err.Error()))
	}
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=google_failed")
}
