package middleware

// identity.go defines the accessor handlers use to pull the
// authenticated identity out of the Echo context after JWTAuth ran.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
)

// CurrentIdentity returns the identity stored by JWTAuth.  The boolean
// is false when the middleware did not run or rejected the request,
// which on a protected route means a programming error in the route
// setup rather than a user mistake.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
	v := c.Get(identityKey)
	ident, ok := v.(model.Identity)
	return ident, ok
}
