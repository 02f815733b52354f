package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID returns the session uid as a string, or "guest" when the
// request is anonymous. Cache and rate-limit keys are scoped with it.
func userID(c echo.Context) string {
	s := CurrentSession(c)
	if !s.LoggedIn {
		return "guest"
	}
	return strconv.FormatUint(s.UID, 10)
}
