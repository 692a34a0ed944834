package middleware

// identity.go resolves the requester identity for a request.  The service
// runs unauthenticated: callers self-identify through the X-User-Name
// header and anonymous callers fall back to the "guest" sentinel.  The
// sentinel is applied only here, at the boundary; the reservation engine
// always receives an explicit requester.

import (
    "strings"

    "github.com/labstack/echo/v4"
)

// requesterKey is the context key under which the resolved identity is
// stored for downstream handlers and middleware.
const requesterKey = "requester"

// DefaultRequester is the identity assigned to anonymous callers.
const DefaultRequester = "guest"

// RequesterHeader is the request header carrying the caller's self-declared name.
const RequesterHeader = "X-User-Name"

// WithRequester resolves the requester name from the request and stores
// it in the Echo context for handlers to pick up.
func WithRequester() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            name := strings.TrimSpace(c.Request().Header.Get(RequesterHeader))
            if name == "" {
                name = DefaultRequester
            }
            c.Set(requesterKey, name)
            return next(c)
        }
    }
}

// Requester returns the identity resolved by WithRequester, falling back
// to the guest sentinel when the middleware did not run.
func Requester(c echo.Context) string {
    if v := c.Get(requesterKey); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return DefaultRequester
}
