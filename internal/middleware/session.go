package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/model"
	"github.com/iliyamo/restaurant-review/internal/utils"
)

const sessionKey = "session"

// Session resolves the optional Bearer access token into a model.Session
// and stores it on the context. Requests without a token, or with one
// that fails validation, continue as guests.
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sess model.Session
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
				if s, err := utils.ParseAccessToken(secret, raw); err == nil {
					sess = s
				}
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// CurrentSession returns the session stored by Session, or a guest.
func CurrentSession(c echo.Context) model.Session {
	s, _ := c.Get(sessionKey).(model.Session)
	return s
}

// RequireLogin aborts guest requests with 401. It must run after Session.
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).LoggedIn {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "login required"})
			}
			return next(c)
		}
	}
}
