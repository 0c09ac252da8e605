package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/config"
	"github.com/ikrrevents/eventsite/internal/middleware"
	"github.com/ikrrevents/eventsite/internal/model"
	"github.com/ikrrevents/eventsite/internal/oauth"
	"github.com/ikrrevents/eventsite/internal/repository"
	"github.com/ikrrevents/eventsite/internal/utils"
)

// Cookie names set by the sign-in flow.  The session cookie name lives in
// middleware because SessionAuth reads it.
const (
	StateCookie   = "oauth_state"
	RefreshCookie = "refresh_token"
	authPath      = "/api/auth"
	stateTTL      = 10 * time.Minute
)

// AuthHandler bundles dependencies for the sign-in endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Provider oauth.Provider
	Log      *slog.Logger
}

// NewAuthHandler constructs an AuthHandler and panics if a dependency is
// nil.
func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, p oauth.Provider, log *slog.Logger) *AuthHandler {
	if u == nil || t == nil || p == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Provider: p, Log: log}
}

// ----- DTOs -----

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// GoogleLogin starts the sign-in flow: it stores a random state in a
// short-lived cookie and redirects to the provider's consent page.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	state, err := utils.NewOAuthState()
	if err != nil {
		return internalError(c, h.Log, "sign-in unavailable", err)
	}
	c.SetCookie(h.cookie(StateCookie, state, authPath, stateTTL))
	return c.Redirect(http.StatusFound, h.Provider.AuthCodeURL(state))
}

// GoogleCallback finishes the sign-in flow.  The user is created on first
// sign-in; the role is recomputed from the configured admin email every
// time.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	state := c.QueryParam("state")
	ck, err := c.Cookie(StateCookie)
	if err != nil || state == "" || ck.Value != state {
		return badRequest(c, "invalid oauth state")
	}
	c.SetCookie(h.cookie(StateCookie, "", authPath, -1))

	if e := c.QueryParam("error"); e != "" {
		return badRequest(c, "sign-in cancelled: "+e)
	}
	code := c.QueryParam("code")
	if code == "" {
		return badRequest(c, "missing authorization code")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), notifyTimeout)
	defer cancel()

	id, err := h.Provider.Exchange(ctx, code)
	if err != nil {
		h.Log.Warn("oauth_exchange_failed", "error", err)
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "email address not verified"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "sign-in failed"})
	}

	u, err := h.Users.UpsertOAuth(ctx, id.Email, id.Name, model.RoleForEmail(id.Email, h.Cfg.AdminEmail))
	if err != nil {
		return internalError(c, h.Log, "sign-in failed", err)
	}
	if _, _, err := h.issue(ctx, c, u); err != nil {
		return internalError(c, h.Log, "sign-in failed", err)
	}
	h.Log.Info("user_signed_in", "user_id", u.ID, "role", u.Role)
	return c.Redirect(http.StatusFound, h.Cfg.PublicURL)
}

// Refresh redeems a refresh token and issues a new pair.  The token comes
// from the JSON body or the refresh cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.presentedRefresh(c)
	if raw == "" {
		return badRequest(c, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(raw)

	ctx, cancel := dbCtx(c)
	defer cancel()

	userID, err := h.Tokens.RedeemRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return internalError(c, h.Log, "redeem refresh failed", err)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return internalError(c, h.Log, "load user failed", err)
	}

	access, refresh, err := h.issue(ctx, c, u)
	if err != nil {
		return internalError(c, h.Log, "issue tokens failed", err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Logout revokes the presented refresh token, or every refresh token of
// the session's user when none is presented, and clears the cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if raw := h.presentedRefresh(c); raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return internalError(c, h.Log, "logout failed", err)
		}
	} else if uid := middleware.UserID(c); uid != "" {
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return internalError(c, h.Log, "logout failed", err)
		}
	}

	c.SetCookie(h.cookie(middleware.SessionCookie, "", "/", -1))
	c.SetCookie(h.cookie(RefreshCookie, "", authPath, -1))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user as stored, including the current role.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": middleware.MsgLoginRequired})
	}
	if err != nil {
		return internalError(c, h.Log, "load user failed", err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// issue creates an access token and a stored refresh token for u and sets
// both cookies.
func (h *AuthHandler) issue(ctx context.Context, c echo.Context, u *model.User) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), u.Email, u.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	c.SetCookie(h.cookie(middleware.SessionCookie, access.Token, "/", time.Duration(h.Cfg.AccessTTLMin)*time.Minute))
	c.SetCookie(h.cookie(RefreshCookie, refresh.Raw, authPath, time.Duration(h.Cfg.RefreshTTLDays)*24*time.Hour))
	return access, refresh, nil
}

// presentedRefresh reads the refresh token from the JSON body, falling
// back to the refresh cookie.
func (h *AuthHandler) presentedRefresh(c echo.Context) string {
	var req refreshReq
	if err := c.Bind(&req); err == nil {
		if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
			return raw
		}
	}
	if ck, err := c.Cookie(RefreshCookie); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

// cookie builds an HttpOnly cookie.  A negative ttl deletes it.
func (h *AuthHandler) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		ck.MaxAge = -1
	} else {
		ck.MaxAge = int(ttl / time.Second)
		ck.Expires = time.Now().Add(ttl)
	}
	return ck
}
