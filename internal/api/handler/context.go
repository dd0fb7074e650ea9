package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// ctxAdmin extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call:
//   - role must be admin (presence proves the middleware ran).
//   - username must be non-empty; every admin action is written to the audit
//     ledger under this identity, so an anonymous admin token is unusable.
func ctxAdmin(c echo.Context) (string, error) {
	role, _ := c.Get("role").(string)
	if role != domain.RoleAdmin {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	username, _ := c.Get("username").(string)
	if username == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing admin identity")
	}

	return username, nil
}
