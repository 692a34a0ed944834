package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/inoryu-os/ai-reservation-system/internal/assistant"
    "github.com/inoryu-os/ai-reservation-system/internal/middleware"
)

// ChatHandler exposes the conversational assistant.  A nil Assistant
// means no LLM credentials were configured; the endpoint then reports
// itself unavailable instead of failing at startup.
type ChatHandler struct {
    Assistant *assistant.Assistant
}

// NewChatHandler constructs a ChatHandler.  assistant may be nil.
func NewChatHandler(a *assistant.Assistant) *ChatHandler {
    return &ChatHandler{Assistant: a}
}

// Chat handles POST /api/chat.  The body carries a session id (clients
// generate one per conversation) and the user's message; the reply tells
// the frontend what the assistant said and which operation it performed.
func (h *ChatHandler) Chat(c echo.Context) error {
    if h.Assistant == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{
            "success": false,
            "error":   "the assistant is not configured",
        })
    }
    var body struct {
        SessionID string `json:"session_id"`
        Message   string `json:"message"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request body"})
    }
    if body.SessionID == "" || body.Message == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "session_id and message are required"})
    }

    requester := middleware.Requester(c)
    reply, err := h.Assistant.ProcessMessage(c.Request().Context(), body.SessionID, requester, body.Message)
    if err != nil {
        c.Logger().Errorf("assistant failed: %v", err)
        return c.JSON(http.StatusBadGateway, echo.Map{
            "success":  false,
            "error":    "assistant error",
            "response": "Sorry, something went wrong while handling your request.",
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":  true,
        "response": reply.Response,
        "action":   reply.Action,
    })
}
