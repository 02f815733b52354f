// Package router registers the HTTP routes of the service. Every route
// runs behind middleware.DBConn and middleware.Session, installed by
// Setup.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/handler"
	"github.com/iliyamo/restaurant-review/internal/logging"
	"github.com/iliyamo/restaurant-review/internal/middleware"
)

// Setup installs the process-wide middleware: request logging, one
// database connection per request and the optional session.
func Setup(e *echo.Echo, db *sql.DB, jwtSecret string) {
	e.Validator = handler.NewRequestValidator()
	e.Use(logging.RequestLogger())
	e.Use(middleware.DBConn(db))
	e.Use(middleware.Session(jwtSecret))
}

// RegisterRoutes registers routes that need neither a session nor the
// database.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoints under /v1/auth behind the
// rate limiter, and /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.RequireLogin())
}

// RegisterPublic registers the browse endpoints. They are open to guests.
// Index and search pages go through the response cache; the detail
// record carries per-user bookmark and friend flags and is rebuilt on
// every request.
func RegisterPublic(e *echo.Echo, p *handler.RestaurantHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/restaurants")
	g.GET("", p.Index, cache)
	g.GET("/search", p.Search, cache)
	g.POST("/search", p.Search)
	g.GET("/search/fuzzy", p.FuzzySearch, cache)
	g.POST("/search/fuzzy", p.FuzzySearch)
	g.GET("/:rid", p.Detail)
}

// RegisterMember registers the endpoints that require a logged-in
// session. Writes go through the rate limiter and invalidate the
// response cache.
func RegisterMember(e *echo.Echo, m *handler.MemberHandler, limit, invalidate echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.RequireLogin())

	g.POST("/restaurants/:rid/reviews", m.PostReview, limit, invalidate)
	g.POST("/restaurants/:rid/tips", m.PostTip, limit, invalidate)
	g.POST("/reviews/:review_id/votes", m.Vote, limit, invalidate)

	g.POST("/restaurants/:rid/bookmark", m.AddBookmark, limit, invalidate)
	g.DELETE("/restaurants/:rid/bookmark", m.RemoveBookmark, limit, invalidate)
	g.GET("/bookmarks", m.Bookmarks)

	g.POST("/friends/:uid", m.AddFriend, limit, invalidate)
	g.DELETE("/friends/:uid", m.RemoveFriend, limit, invalidate)
	g.GET("/friends", m.Friends)
}
