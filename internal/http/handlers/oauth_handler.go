package handlers

import (
	"encoding/json"
	"time"

	applog "paperback/internal/log"
	"paperback/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthHandler runs the Google authorization-code flow and hands the browser
// back to the frontend callback with a bearer token in the query string.
type OAuthHandler struct {
	Auth        *services.AuthService
	Google      *oauth2.Config
	FrontendURL string
}

// GET /auth/google/redirect
func (h *OAuthHandler) GoogleRedirect(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})
	return c.Redirect(h.Google.AuthCodeURL(state), fiber.StatusFound)
}

// GET /auth/google/callback
func (h *OAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if c.Query("state") == "" || c.Query("state") != c.Cookies("oauth_state") {
		applog.Security(c, "oauth.google.state.mismatch", nil)
		return fail(c, fiber.StatusBadRequest, "state mismatch")
	}
	code := c.Query("code")
	if code == "" {
		return fail(c, fiber.StatusBadRequest, "missing code")
	}

	tok, err := h.Google.Exchange(c.Context(), code)
	if err != nil {
		applog.Error(c, "oauth.google.exchange.fail", err, nil)
		return fail(c, fiber.StatusBadGateway, "could not complete sign-in")
	}

	resp, err := h.Google.Client(c.Context(), tok).Get(googleUserinfoURL)
	if err != nil {
		applog.Error(c, "oauth.google.userinfo.fail", err, nil)
		return fail(c, fiber.StatusBadGateway, "could not complete sign-in")
	}
	defer func() { _ = resp.Body.Close() }()

	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.ID == "" {
		applog.Error(c, "oauth.google.userinfo.decode", err, nil)
		return fail(c, fiber.StatusBadGateway, "could not complete sign-in")
	}

	_, bearer, err := h.Auth.GoogleLogin(profile.ID, profile.Email, profile.Name)
	if err != nil {
		applog.Error(c, "oauth.google.login.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not complete sign-in")
	}

	applog.Audit(c, "oauth.google.login", map[string]any{"email": profile.Email})
	return c.Redirect(h.FrontendURL+"/google/callback?token="+bearer, fiber.StatusFound)
}
