package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/inoryu-os/ai-reservation-system/internal/config"
    "github.com/inoryu-os/ai-reservation-system/internal/handler"
    "github.com/inoryu-os/ai-reservation-system/internal/middleware"
)

// RegisterRoutes wires every endpoint of the reservation API onto the
// provided Echo instance.  The identity middleware runs on all routes so
// handlers always see a resolved requester; the Redis-backed rate
// limiter and response cache apply to the API group and degrade to
// no-ops when rdb is nil.
func RegisterRoutes(e *echo.Echo, rdb *redis.Client,
    reservations *handler.ReservationHandler, rooms *handler.RoomHandler, chat *handler.ChatHandler) {

    // Health check for load balancers and monitoring; deliberately
    // outside the rate-limited group.
    e.GET("/healthz", handler.Health)

    api := e.Group("/api")
    api.Use(middleware.WithRequester())
    api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    api.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    // Room catalog and availability (read-only).
    api.GET("/rooms", rooms.List)
    api.GET("/rooms/available", rooms.Available)

    // Reservation lifecycle.  Create and cancel are the only write
    // paths; everything else reads.
    api.POST("/reservations", reservations.Create)
    api.GET("/reservations/:date", reservations.ListByDate)
    api.GET("/my-reservations", reservations.ListMine)
    api.DELETE("/reservations/:id", reservations.Cancel)

    // Conversational assistant.
    api.POST("/chat", chat.Chat)
}
