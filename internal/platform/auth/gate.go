// Package auth guards the admin endpoints with a single shared secret.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminHeader carries the admin secret on every admin request.
const AdminHeader = "X-Admin-Password"

var ErrUnauthorized = errors.New("unauthorized")

// Gate decides whether a presented credential grants admin access.
type Gate struct {
	digest [sha256.Size]byte
	empty  bool
}

// NewGate builds a Gate for secret. A Gate built from an empty secret
// rejects everything.
func NewGate(secret string) *Gate {
	return &Gate{
		digest: sha256.Sum256([]byte(secret)),
		empty:  secret == "",
	}
}

// Check returns nil when presented equals the configured secret exactly.
// Comparison is on fixed-length digests so timing does not depend on where
// the inputs differ or on their lengths.
func (g *Gate) Check(presented string) error {
	if g == nil || g.empty || presented == "" {
		return ErrUnauthorized
	}
	d := sha256.Sum256([]byte(presented))
	if subtle.ConstantTimeCompare(d[:], g.digest[:]) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// RequireAdmin rejects requests whose X-Admin-Password header does not pass
// the gate with 401 {"error":"Unauthorized"} before the handler runs.
func RequireAdmin(g *Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := g.Check(c.Request().Header.Get(AdminHeader)); err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}
