package assistant

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"

    "github.com/sashabaranov/go-openai"

    "github.com/inoryu-os/ai-reservation-system/internal/booking"
    "github.com/inoryu-os/ai-reservation-system/internal/clock"
    "github.com/inoryu-os/ai-reservation-system/internal/model"
)

// Operations is the slice of the reservation engine the assistant drives.
// *booking.Engine satisfies it; tests substitute a stub.
type Operations interface {
    Create(ctx context.Context, roomID uint64, requester, date, start, end string) (*model.Reservation, error)
    ListByDate(ctx context.Context, date string) ([]model.Reservation, error)
    Cancel(ctx context.Context, id uint64, requester string) (*model.Reservation, error)
    FindAvailableRooms(ctx context.Context, date, start string, durationMinutes int) ([]model.Room, error)
    Rooms(ctx context.Context) ([]model.Room, error)
    Clock() *clock.Clock
    Hours() booking.Hours
}

// Tool argument payloads as the model fills them in.
type createArgs struct {
    RoomID    uint64 `json:"room_id"`
    Date      string `json:"date"`
    StartTime string `json:"start_time"`
    EndTime   string `json:"end_time"`
}

type listArgs struct {
    Date string `json:"date"`
}

type cancelArgs struct {
    ReservationID uint64 `json:"reservation_id"`
}

type availableArgs struct {
    Date            string `json:"date"`
    StartTime       string `json:"start_time"`
    DurationMinutes int    `json:"duration_minutes"`
}

// reservationTools declares the function-calling surface exposed to the
// model.  The schemas mirror the REST API exactly so the model cannot
// express an operation the service does not support.
func reservationTools() []openai.Tool {
    strProp := func(desc string) map[string]any {
        return map[string]any{"type": "string", "description": desc}
    }
    intProp := func(desc string) map[string]any {
        return map[string]any{"type": "integer", "description": desc}
    }
    object := func(props map[string]any, required ...string) json.RawMessage {
        schema, _ := json.Marshal(map[string]any{
            "type":       "object",
            "properties": props,
            "required":   required,
        })
        return schema
    }

    return []openai.Tool{
        {
            Type: openai.ToolTypeFunction,
            Function: &openai.FunctionDefinition{
                Name:        "create_reservation",
                Description: "Create a meeting-room reservation",
                Parameters: object(map[string]any{
                    "room_id":    intProp("Meeting room ID"),
                    "date":       strProp("Reservation date (YYYY-MM-DD)"),
                    "start_time": strProp("Start time (HH:MM, 24-hour)"),
                    "end_time":   strProp("End time (HH:MM, 24-hour)"),
                }, "room_id", "date", "start_time", "end_time"),
            },
        },
        {
            Type: openai.ToolTypeFunction,
            Function: &openai.FunctionDefinition{
                Name:        "get_reservations",
                Description: "List all reservations on a given date",
                Parameters: object(map[string]any{
                    "date": strProp("Date to inspect (YYYY-MM-DD)"),
                }, "date"),
            },
        },
        {
            Type: openai.ToolTypeFunction,
            Function: &openai.FunctionDefinition{
                Name:        "cancel_reservation",
                Description: "Cancel a reservation by its ID",
                Parameters: object(map[string]any{
                    "reservation_id": intProp("ID of the reservation to cancel"),
                }, "reservation_id"),
            },
        },
        {
            Type: openai.ToolTypeFunction,
            Function: &openai.FunctionDefinition{
                Name:        "find_available_rooms",
                Description: "Find rooms free for a time interval",
                Parameters: object(map[string]any{
                    "date":             strProp("Date to search (YYYY-MM-DD)"),
                    "start_time":       strProp("Interval start (HH:MM, 24-hour)"),
                    "duration_minutes": intProp("Interval length in minutes"),
                }, "date", "start_time", "duration_minutes"),
            },
        },
    }
}

// dispatch executes the tool the model selected and renders a
// conversational reply.  Engine failures with an expected kind become
// polite refusals rather than errors: from the user's point of view "that
// slot is taken" is an answer, not a fault.
func (a *Assistant) dispatch(ctx context.Context, requester, name, rawArgs string) *Reply {
    switch name {
    case "create_reservation":
        var args createArgs
        if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
            return badToolArgs("reserve", err)
        }
        res, err := a.ops.Create(ctx, args.RoomID, requester, args.Date, args.StartTime, args.EndTime)
        if err != nil {
            return refusal("reserve", "I could not make that reservation", err)
        }
        return &Reply{
            Action: "reserve",
            Response: fmt.Sprintf("Done! %s is reserved on %s from %s to %s under %s (reservation ID %d).",
                res.RoomName, args.Date, args.StartTime, args.EndTime, res.Requester, res.ID),
        }

    case "get_reservations":
        var args listArgs
        if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
            return badToolArgs("check", err)
        }
        reservations, err := a.ops.ListByDate(ctx, args.Date)
        if err != nil {
            return refusal("check", "I could not look up the reservations", err)
        }
        if len(reservations) == 0 {
            return &Reply{Action: "check", Response: fmt.Sprintf("There are no reservations on %s.", args.Date)}
        }
        clk := a.ops.Clock()
        var lines []string
        for _, r := range reservations {
            lines = append(lines, fmt.Sprintf("- %s %s~%s (%s, ID %d)",
                r.RoomName, clk.FormatTime(r.StartTime), clk.FormatTime(r.EndTime), r.Requester, r.ID))
        }
        return &Reply{
            Action:   "check",
            Response: fmt.Sprintf("Reservations on %s:\n%s", args.Date, strings.Join(lines, "\n")),
        }

    case "cancel_reservation":
        var args cancelArgs
        if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
            return badToolArgs("cancel", err)
        }
        res, err := a.ops.Cancel(ctx, args.ReservationID, requester)
        if err != nil {
            return refusal("cancel", "I could not cancel that reservation", err)
        }
        clk := a.ops.Clock()
        return &Reply{
            Action: "cancel",
            Response: fmt.Sprintf("Reservation %d (%s on %s, %s~%s) has been cancelled.",
                res.ID, res.RoomName, clk.FormatDate(res.StartTime),
                clk.FormatTime(res.StartTime), clk.FormatTime(res.EndTime)),
        }

    case "find_available_rooms":
        var args availableArgs
        if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
            return badToolArgs("availability", err)
        }
        rooms, err := a.ops.FindAvailableRooms(ctx, args.Date, args.StartTime, args.DurationMinutes)
        if err != nil {
            return refusal("availability", "I could not check availability", err)
        }
        if len(rooms) == 0 {
            return &Reply{
                Action:   "availability",
                Response: fmt.Sprintf("No rooms are free on %s starting %s for %d minutes.", args.Date, args.StartTime, args.DurationMinutes),
            }
        }
        var names []string
        for _, r := range rooms {
            names = append(names, fmt.Sprintf("%s (ID %d)", r.Name, r.ID))
        }
        return &Reply{
            Action:   "availability",
            Response: fmt.Sprintf("Free on %s from %s for %d minutes: %s.", args.Date, args.StartTime, args.DurationMinutes, strings.Join(names, ", ")),
        }
    }

    return &Reply{Action: "info", Response: fmt.Sprintf("I do not know how to perform %q.", name)}
}

// refusal wraps an engine error into a conversational reply, surfacing
// the engine's human-readable message when one exists.
func refusal(action, lead string, err error) *Reply {
    msg := err.Error()
    if i := strings.Index(msg, ": "); i >= 0 {
        // booking errors render as "kind: message"; keep the message half.
        msg = msg[i+2:]
    }
    return &Reply{Action: action, Response: fmt.Sprintf("%s: %s", lead, msg)}
}

// badToolArgs reports arguments the model produced that do not decode.
func badToolArgs(action string, err error) *Reply {
    return &Reply{
        Action:   action,
        Response: fmt.Sprintf("I could not understand the request details (%v). Could you rephrase?", err),
    }
}
