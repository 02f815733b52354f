package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/config"
	"github.com/iliyamo/restaurant-review/internal/middleware"
	"github.com/iliyamo/restaurant-review/internal/model"
	"github.com/iliyamo/restaurant-review/internal/queue"
	"github.com/iliyamo/restaurant-review/internal/repository"
	"github.com/iliyamo/restaurant-review/internal/service"
	"github.com/iliyamo/restaurant-review/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg config.Config
	Pub service.Publisher
}

func NewAuthHandler(cfg config.Config, pub service.Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Pub: pub}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"u_name" form:"u_name" validate:"required,max=64"`
	Account  string `json:"account" form:"account" validate:"required,min=3,max=64"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	ConfPW   string `json:"conf_pw" form:"conf_pw" validate:"required,eqfield=Password"`
}
type loginReq struct {
	Account  string `json:"account" form:"account" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID      uint64 `json:"uid"`
	Name    string `json:"u_name"`
	Account string `json:"account"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issue creates an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, tokens *repository.TokenRepo, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: u.ID, Name: u.Name, Account: u.Account},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := decode(c, &req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := st.Users.Create(ctx, req.Name, req.Account, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": "account already exists"})
		}
		return serverError(c, "create user", err)
	}

	u := model.User{ID: uid, Name: strings.TrimSpace(req.Name), Account: strings.TrimSpace(req.Account)}
	resp, err := h.issue(ctx, st.Tokens, u)
	if err != nil {
		return serverError(c, "issue tokens", err)
	}
	publish(h.Pub, queue.ActivityEvent{Kind: queue.KindUserRegistered, UserID: uid, UserName: u.Name})
	return c.JSON(http.StatusCreated, resp)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := decode(c, &req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := st.Users.GetByAccount(ctx, req.Account)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid credentials"})
		}
		return serverError(c, "load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid credentials"})
	}

	resp, err := h.issue(ctx, st.Tokens, u)
	if err != nil {
		return serverError(c, "issue tokens", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token is required")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := st.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid refresh"})
	}
	if err := st.Tokens.RevokeByHash(ctx, hash); err != nil {
		return serverError(c, "revoke refresh", err)
	}
	u, err := st.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid refresh"})
		}
		return serverError(c, "load user", err)
	}

	resp, err := h.issue(ctx, st.Tokens, u)
	if err != nil {
		return serverError(c, "issue tokens", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the refresh token in the body, or every refresh token
// of the session user when only a bearer token is presented.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)
	sess := middleware.CurrentSession(c)
	if raw == "" && !sess.LoggedIn {
		return badRequest(c, "provide Authorization header or refresh_token")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw == "" {
		if err := st.Tokens.RevokeAllForUser(ctx, sess.UID); err != nil {
			return serverError(c, "logout", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	hash := utils.HashRefreshRaw(raw)
	if _, err := st.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid refresh token"})
	}
	if err := st.Tokens.RevokeByHash(ctx, hash); err != nil {
		return serverError(c, "logout", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	return c.JSON(http.StatusOK, echo.Map{
		"username": sess.DisplayName(),
		"session":  sess,
	})
}
