package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/utils"
)

const jwtTestSecret = "jwt-middleware-test-secret"

func protectedEcho(secret string, roles ...string) (*echo.Echo, *model.Identity) {
	var seen model.Identity
	e := echo.New()
	g := e.Group("/v1", JWTAuth(secret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/me", func(c echo.Context) error {
		ident, ok := CurrentIdentity(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		seen = ident
		return c.NoContent(http.StatusOK)
	})
	return e, &seen
}

func getWithAuth(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestJWTAuthRoundtrip(t *testing.T) {
	ident := model.Identity{UserID: 12, Email: "bob@uni.edu", Name: "Bob", Role: model.RoleStaff}
	tok, err := utils.NewAccessToken(jwtTestSecret, ident, 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e, seen := protectedEcho(jwtTestSecret)
	if w := getWithAuth(e, "Bearer "+tok.Token); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", w.Code, w.Body.String())
	}
	if *seen != ident {
		t.Fatalf("identity mangled in transit: %+v", *seen)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	e, _ := protectedEcho(jwtTestSecret)

	t.Run("missing header", func(t *testing.T) {
		if w := getWithAuth(e, ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
	t.Run("garbage token", func(t *testing.T) {
		if w := getWithAuth(e, "Bearer not.a.jwt"); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("some-other-secret", model.Identity{UserID: 1, Email: "x@y", Name: "X", Role: model.RoleStudent}, 5)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		if w := getWithAuth(e, "Bearer "+tok.Token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
	t.Run("incomplete claims", func(t *testing.T) {
		// A token without the role claim must not pass even with a valid
		// signature.
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 5, "email": "x@y"})
		signed, err := raw.SignedString([]byte(jwtTestSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if w := getWithAuth(e, "Bearer "+signed); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	student := model.Identity{UserID: 3, Email: "s@uni.edu", Name: "Sam", Role: model.RoleStudent}
	tok, err := utils.NewAccessToken(jwtTestSecret, student, 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	t.Run("allowed", func(t *testing.T) {
		e, _ := protectedEcho(jwtTestSecret, model.RoleStudent, model.RoleStaff)
		if w := getWithAuth(e, "Bearer "+tok.Token); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
	t.Run("forbidden", func(t *testing.T) {
		e, _ := protectedEcho(jwtTestSecret, model.RoleStaff)
		if w := getWithAuth(e, "Bearer "+tok.Token); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})
}
