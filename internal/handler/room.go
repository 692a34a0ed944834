package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/inoryu-os/ai-reservation-system/internal/booking"
)

// RoomHandler serves the room catalog and availability queries.  Both
// endpoints are read-only; availability reserves nothing.
type RoomHandler struct {
    Engine *booking.Engine
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(engine *booking.Engine) *RoomHandler {
    if engine == nil {
        panic("nil engine passed to NewRoomHandler")
    }
    return &RoomHandler{Engine: engine}
}

// List handles GET /api/rooms and returns the catalog ordered by id.
func (h *RoomHandler) List(c echo.Context) error {
    rooms, err := h.Engine.Rooms(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "rooms":   rooms,
    })
}

// Available handles GET /api/rooms/available.  Query parameters: date
// (YYYY-MM-DD), start_time (HH:MM) and duration_minutes.  It returns
// every room with no reservation overlapping the candidate interval.
func (h *RoomHandler) Available(c echo.Context) error {
    date := c.QueryParam("date")
    start := c.QueryParam("start_time")
    durationStr := c.QueryParam("duration_minutes")
    duration, err := strconv.Atoi(durationStr)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "success": false,
            "error":   "duration_minutes must be an integer",
            "kind":    string(booking.KindDuration),
        })
    }

    rooms, err := h.Engine.FindAvailableRooms(c.Request().Context(), date, start, duration)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":          true,
        "date":             date,
        "start_time":       start,
        "duration_minutes": duration,
        "rooms":            rooms,
    })
}
