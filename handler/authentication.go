package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo"
	"github.com/webuild-community/honor/model"
	"github.com/webuild-community/honor/service/admin"
	"go.uber.org/zap"
)

const (
	SessionCookie = "honor_session"
	adminKey      = "admin"
)

type AuthorizeHandler struct {
	adminSvc     admin.Service
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthorizeHandler(e *echo.Echo, logger *zap.Logger, adminSvc admin.Service, cookieSecure bool) *AuthorizeHandler {
	handler := &AuthorizeHandler{
		adminSvc:     adminSvc,
		cookieSecure: cookieSecure,
		logger:       logger,
	}

	e.POST("/api/register", handler.register)
	e.POST("/api/login", handler.login)
	e.POST("/api/logout", handler.logout)
	e.GET("/api/check-auth", handler.checkAuth)

	return handler
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type successResp struct {
	Success bool `json:"success"`
}

type errorResp struct {
	Error string `json:"error"`
}

// IsAdmin is the capability check: does the request carry a live admin session?
func (h *AuthorizeHandler) IsAdmin(c echo.Context) bool {
	_, ok := h.currentAdmin(c)
	return ok
}

// RequireAdmin rejects requests without an admin session with 401.
func (h *AuthorizeHandler) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		a, ok := h.currentAdmin(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, errorResp{Error: "Unauthorized: admin login required"})
		}
		c.Set(adminKey, a)
		return next(c)
	}
}

func (h *AuthorizeHandler) currentAdmin(c echo.Context) (model.Admin, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return model.Admin{}, false
	}

	a, err := h.adminSvc.Authenticate(c.Request().Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, admin.ErrNoSession) && !errors.Is(err, admin.ErrSessionExpired) {
			h.logger.Error("cannot authenticate session", zap.Error(err))
		}
		return model.Admin{}, false
	}
	return a, true
}

func (h *AuthorizeHandler) register(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Invalid request body"})
	}

	a, err := h.adminSvc.Register(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, admin.ErrDuplicateUsername):
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Username already exists"})
	case errors.Is(err, admin.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Username and password are required"})
	case err != nil:
		h.logger.Error("cannot register admin", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Registration failed"})
	}

	return h.startSession(c, a)
}

func (h *AuthorizeHandler) login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResp{Error: "Invalid request body"})
	}

	a, err := h.adminSvc.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, admin.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, errorResp{Error: "Invalid username or password"})
	}
	if err != nil {
		h.logger.Error("cannot login admin", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Login failed"})
	}

	return h.startSession(c, a)
}

func (h *AuthorizeHandler) startSession(c echo.Context, a model.Admin) error {
	session, err := h.adminSvc.StartSession(c.Request().Context(), a.ID)
	if err != nil {
		h.logger.Error("cannot start session", zap.Error(err), zap.Uint("admin_id", a.ID))
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Cannot start session"})
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, successResp{Success: true})
}

func (h *AuthorizeHandler) logout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		if err := h.adminSvc.Logout(c.Request().Context(), cookie.Value); err != nil {
			h.logger.Error("cannot revoke session", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, errorResp{Error: "Logout failed"})
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, successResp{Success: true})
}

func (h *AuthorizeHandler) checkAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"loggedIn": h.IsAdmin(c)})
}
