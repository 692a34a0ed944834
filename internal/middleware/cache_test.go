package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inoryu-os/ai-reservation-system/internal/config"
)

// keyFor resolves the cache key for a request the way the middleware
// stack does: identity first, then key derivation.
func keyFor(t *testing.T, cfg config.CacheConfig, target, user string) string {
	t.Helper()
	e := echo.New()
	var key string
	h := WithRequester()(func(c echo.Context) error {
		key = cacheKeyFrom(cfg, c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if user != "" {
		req.Header.Set(RequesterHeader, user)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(req.URL.Path)
	if err := h(c); err != nil {
		t.Fatalf("handler returned %v", err)
	}
	return key
}

func TestCacheKeyScopedPerRequester(t *testing.T) {
	cfg := config.LoadCacheConfig()

	// Same path and query, different callers: my-reservations is scoped
	// to the requester, so the keys must differ or one caller would be
	// served the other's cached listing.
	alice := keyFor(t, cfg, "/api/my-reservations?date=2025-10-24", "alice")
	bob := keyFor(t, cfg, "/api/my-reservations?date=2025-10-24", "bob")
	if alice == bob {
		t.Errorf("cache key %q shared between two requesters", alice)
	}

	// An anonymous caller maps to the guest identity, distinct from any
	// named caller.
	guest := keyFor(t, cfg, "/api/my-reservations?date=2025-10-24", "")
	if guest == alice {
		t.Error("anonymous caller shares a cache key with a named caller")
	}

	// The same caller repeating the same request must hit the same entry.
	again := keyFor(t, cfg, "/api/my-reservations?date=2025-10-24", "alice")
	if again != alice {
		t.Errorf("key not stable for one requester: %q vs %q", again, alice)
	}
}

func TestCacheKeyVariesByRouteAndQuery(t *testing.T) {
	cfg := config.LoadCacheConfig()

	base := keyFor(t, cfg, "/api/reservations/2025-10-24", "alice")
	otherDay := keyFor(t, cfg, "/api/reservations/2025-10-25", "alice")
	if base == otherDay {
		t.Error("different paths share a cache key")
	}

	avail := keyFor(t, cfg, "/api/rooms/available?date=2025-10-24&start_time=10:00&duration_minutes=60", "alice")
	availLonger := keyFor(t, cfg, "/api/rooms/available?date=2025-10-24&start_time=10:00&duration_minutes=90", "alice")
	if avail == availLonger {
		t.Error("different queries share a cache key")
	}
}

func TestCacheDisabledIsPassthrough(t *testing.T) {
	cfg := config.LoadCacheConfig()
	cfg.Enabled = false

	e := echo.New()
	called := false
	h := NewRedisCache(cfg, nil)(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("middleware returned %v", err)
	}
	if !called {
		t.Error("disabled cache must invoke the next handler")
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("disabled cache must not set X-Cache")
	}
}
