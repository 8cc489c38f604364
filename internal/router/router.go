// Package router wires handlers, authentication and the request-level
// middleware (rate limiting, response caching) onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/model"
)

// Deps carries everything route registration needs.  Rdb may be nil, in
// which case the listing cache is skipped.
type Deps struct {
	Auth         *handler.AuthHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	JWTSecret    string
	RateLimit    config.RateLimitConfig
	Cache        config.CacheConfig
	Rdb          *redis.Client
}

// Register sets up all routes.  Unauthenticated endpoints live under
// /v1/auth plus the health probe; everything else requires a valid
// access token.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	a := e.Group("/v1/auth")
	a.POST("/register", d.Auth.Register)
	a.POST("/login", d.Auth.Login)
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/logout", d.Auth.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(d.JWTSecret))
	v1.Use(middleware.RequireRole(model.RoleStudent, model.RoleStaff))

	v1.GET("/me", d.Auth.Me)
	v1.POST("/logout-all", d.Auth.LogoutAll)

	v1.GET("/rooms", d.Rooms.ListRooms)
	v1.GET("/rooms/:id", d.Rooms.GetRoom)
	v1.POST("/rooms", d.Rooms.CreateRoom, middleware.RequireRole(model.RoleStaff))

	// Booking writes are throttled per client; the listing is cached per
	// viewer so redacted responses never leak across identities.
	limited := middleware.NewTokenBucket(d.RateLimit)
	v1.POST("/reservations", d.Reservations.Create, limited)
	v1.PUT("/reservations/:id", d.Reservations.Update, limited)
	v1.DELETE("/reservations/:id", d.Reservations.Cancel, limited)
	v1.GET("/reservations", d.Reservations.List, middleware.NewRedisCache(d.Cache, d.Rdb))
}
