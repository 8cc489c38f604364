// Package middleware provides reusable HTTP middleware: JWT
// authentication, role enforcement, per-client rate limiting and
// response caching.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/room-reservation/internal/model"
)

// identityKey is the context key the authenticated identity is stored
// under.  Handlers retrieve it via CurrentIdentity.
const identityKey = "identity"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the caller's identity into the request context.  The
// provided secret must match the one used when issuing tokens.  The
// token carries the full identity (subject, email, name, role) so no
// database lookup happens per request; handlers receive it via
// CurrentIdentity and pass it explicitly into the service layer.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any other signing
			// method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			ident := identityFromClaims(claims)
			if ident.UserID == 0 || ident.Email == "" || ident.Role == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incomplete identity claims"})
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// identityFromClaims builds a model.Identity out of the token claims.
// Numeric claims arrive as float64 after JSON decoding.
func identityFromClaims(claims jwt.MapClaims) model.Identity {
	var ident model.Identity
	if sub, ok := claims["sub"].(float64); ok {
		ident.UserID = uint64(sub)
	}
	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		ident.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		ident.Role = role
	}
	return ident
}
