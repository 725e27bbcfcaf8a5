package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/task_management_sample/internal/auth"
	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/service"
	"github.com/locvowork/task_management_sample/internal/service/serviceutils"
)

type AuthHandler struct {
	service       service.AuthService
	secureCookies bool
}

func NewAuthHandler(svc service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: svc, secureCookies: secureCookies}
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(c echo.Context) error {
	ctx := c.Request().Context()
	var req domain.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	user, token, err := h.service.Register(ctx, req)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Registration failed", err)
	}

	c.SetCookie(auth.NewSessionCookie(token, h.secureCookies))
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Registered", echo.Map{"user": user})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c echo.Context) error {
	ctx := c.Request().Context()
	var req domain.LoginRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	user, token, err := h.service.Login(ctx, req)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Login failed", err)
	}

	c.SetCookie(auth.NewSessionCookie(token, h.secureCookies))
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Logged in", echo.Map{"user": user})
}

// LogoutHandler handles POST /api/auth/logout. Tokens are not revoked; the cookie is
// just cleared.
func (h *AuthHandler) LogoutHandler(c echo.Context) error {
	c.SetCookie(auth.ExpiredSessionCookie(h.secureCookies))
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Logged out", nil)
}

// MeHandler handles GET /api/auth/me
func (h *AuthHandler) MeHandler(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", echo.Map{"user": user})
}
