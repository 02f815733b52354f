package middleware

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/logging"
)

const connKey = "db_conn"

// DBConn acquires one pooled connection per request and stores it on the
// context. The connection is returned to the pool when the handler
// finishes, whatever the outcome. When no connection can be acquired the
// request still runs; handlers see Conn report false and degrade.
func DBConn(db *sql.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			conn, err := db.Conn(c.Request().Context())
			if err != nil {
				logging.Error().Err(err).Str("path", c.Path()).Msg("acquire db connection")
				return next(c)
			}
			defer conn.Close()
			c.Set(connKey, conn)
			return next(c)
		}
	}
}

// Conn returns the connection acquired by DBConn for this request.
func Conn(c echo.Context) (*sql.Conn, bool) {
	conn, ok := c.Get(connKey).(*sql.Conn)
	return conn, ok && conn != nil
}
