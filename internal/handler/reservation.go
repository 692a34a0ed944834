package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/inoryu-os/ai-reservation-system/internal/booking"
    "github.com/inoryu-os/ai-reservation-system/internal/middleware"
    "github.com/inoryu-os/ai-reservation-system/internal/model"
    "github.com/inoryu-os/ai-reservation-system/internal/queue"
    queue_publisher "github.com/inoryu-os/ai-reservation-system/internal/service"
)

// ReservationHandler exposes the reservation engine over HTTP.  The
// handlers are thin: they bind JSON, resolve the requester identity set
// by middleware, invoke the engine and translate error kinds to HTTP
// statuses.  Successful writes additionally emit broker events on a
// best-effort basis.
type ReservationHandler struct {
    Engine *booking.Engine
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(engine *booking.Engine) *ReservationHandler {
    if engine == nil {
        panic("nil engine passed to NewReservationHandler")
    }
    return &ReservationHandler{Engine: engine}
}

// reservationView is the wire representation of a reservation, matching
// the shape established by the original API: times and date rendered as
// strings in the display zone.
type reservationView struct {
    ID        uint64 `json:"id"`
    RoomID    uint64 `json:"room_id"`
    RoomName  string `json:"room_name"`
    UserName  string `json:"user_name"`
    StartTime string `json:"start_time"`
    EndTime   string `json:"end_time"`
    Date      string `json:"date"`
}

func (h *ReservationHandler) view(r model.Reservation) reservationView {
    clk := h.Engine.Clock()
    return reservationView{
        ID:        r.ID,
        RoomID:    r.RoomID,
        RoomName:  r.RoomName,
        UserName:  r.Requester,
        StartTime: clk.FormatTime(r.StartTime),
        EndTime:   clk.FormatTime(r.EndTime),
        Date:      clk.FormatDate(r.StartTime),
    }
}

// fail renders an engine error as {success:false, error, kind} with the
// HTTP status its kind maps to.
func fail(c echo.Context, err error) error {
    var be *booking.Error
    if !errors.As(err, &be) {
        return c.JSON(http.StatusInternalServerError, echo.Map{
            "success": false,
            "error":   "internal error",
            "kind":    string(booking.KindStorage),
        })
    }
    return c.JSON(statusFor(be.Kind), echo.Map{
        "success": false,
        "error":   be.Message,
        "kind":    string(be.Kind),
    })
}

// statusFor maps stable error kinds to HTTP statuses.
func statusFor(kind booking.Kind) int {
    switch kind {
    case booking.KindMissingField, booking.KindFormat, booking.KindOrdering,
        booking.KindOutOfHours, booking.KindDuration:
        return http.StatusBadRequest
    case booking.KindConflict:
        return http.StatusConflict
    case booking.KindNotFound:
        return http.StatusNotFound
    case booking.KindForbidden:
        return http.StatusForbidden
    default:
        return http.StatusInternalServerError
    }
}

// Create handles POST /api/reservations.  The body carries the room id,
// date and time range; the requester comes from the identity middleware.
func (h *ReservationHandler) Create(c echo.Context) error {
    var body struct {
        RoomID    uint64 `json:"room_id"`
        Date      string `json:"date"`
        StartTime string `json:"start_time"`
        EndTime   string `json:"end_time"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request body"})
    }
    requester := middleware.Requester(c)

    res, err := h.Engine.Create(c.Request().Context(), body.RoomID, requester, body.Date, body.StartTime, body.EndTime)
    if err != nil {
        return fail(c, err)
    }

    view := h.view(*res)
    go h.publishCreated(*res, view)

    return c.JSON(http.StatusCreated, echo.Map{
        "success":     true,
        "message":     "reservation created",
        "reservation": view,
    })
}

// publishCreated emits a reservation.created event.  Publishing is best
// effort; a broker outage must not fail the booking that already
// committed.
func (h *ReservationHandler) publishCreated(res model.Reservation, view reservationView) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = queue_publisher.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{
        ReservationID: res.ID,
        RoomID:        res.RoomID,
        RoomName:      res.RoomName,
        Requester:     res.Requester,
        Date:          view.Date,
        StartTime:     view.StartTime,
        EndTime:       view.EndTime,
        CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
    })
}

// ListByDate handles GET /api/reservations/:date.  It returns every
// reservation starting on the given day across all rooms, ordered by
// start instant then room id.
func (h *ReservationHandler) ListByDate(c echo.Context) error {
    date := c.Param("date")
    reservations, err := h.Engine.ListByDate(c.Request().Context(), date)
    if err != nil {
        return fail(c, err)
    }
    views := make([]reservationView, 0, len(reservations))
    for _, r := range reservations {
        views = append(views, h.view(r))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":      true,
        "reservations": views,
    })
}

// ListMine handles GET /api/my-reservations.  It lists the requester's
// bookings, optionally narrowed to one day with the ?date= query.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    requester := middleware.Requester(c)
    date := c.QueryParam("date")
    reservations, err := h.Engine.ListByRequester(c.Request().Context(), requester, date)
    if err != nil {
        return fail(c, err)
    }
    views := make([]reservationView, 0, len(reservations))
    for _, r := range reservations {
        views = append(views, h.view(r))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":      true,
        "user_name":    requester,
        "reservations": views,
    })
}

// Cancel handles DELETE /api/reservations/:id.  Whether the requester
// must match the original booker is a deployment policy decided at
// engine construction.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid reservation id"})
    }
    requester := middleware.Requester(c)

    freed, err := h.Engine.Cancel(c.Request().Context(), id, requester)
    if err != nil {
        return fail(c, err)
    }

    go h.publishCancelled(*freed, h.view(*freed), requester)

    return c.JSON(http.StatusOK, echo.Map{
        "success":        true,
        "message":        "reservation cancelled",
        "reservation_id": freed.ID,
    })
}

// publishCancelled emits a reservation.cancelled event carrying the
// freed slot's details.  Best effort, like publishCreated.
func (h *ReservationHandler) publishCancelled(res model.Reservation, view reservationView, requester string) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = queue_publisher.PublishReservationCancelled(ctx, queue.ReservationCancelledEvent{
        ReservationID: res.ID,
        RoomID:        res.RoomID,
        RoomName:      res.RoomName,
        Requester:     requester,
        Date:          view.Date,
        StartTime:     view.StartTime,
        EndTime:       view.EndTime,
        CancelledAt:   time.Now().UTC().Format(time.RFC3339),
    })
}
