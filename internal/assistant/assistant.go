// Package assistant turns natural-language chat messages into reservation
// operations.  The LLM is treated as a black box that picks one of a
// small set of declared tools and fills in its arguments; every actual
// reservation decision still goes through the engine, so the assistant
// can never bypass validation or conflict checking.
package assistant

import (
    "context"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/sashabaranov/go-openai"

    "github.com/inoryu-os/ai-reservation-system/internal/chat"
    "github.com/inoryu-os/ai-reservation-system/internal/clock"
    "github.com/inoryu-os/ai-reservation-system/internal/config"
)

// requestTimeout bounds one completion round trip.
const requestTimeout = 30 * time.Second

// Reply is the assistant's answer to one chat turn.  Action tells the
// frontend what category of operation happened: "reserve", "check",
// "cancel", "availability" or "info" for plain conversation.
type Reply struct {
    Response string `json:"response"`
    Action   string `json:"action"`
}

// Assistant wires the chat-completion client to the reservation engine
// and the Redis-backed history store.
type Assistant struct {
    client  *openai.Client
    model   string
    ops     Operations
    history *chat.Store
}

// New constructs an Assistant.  It returns nil when no API key is
// configured; callers treat a nil assistant as "chat disabled" and the
// rest of the service keeps working.
func New(cfg config.AssistantConfig, ops Operations, history *chat.Store) *Assistant {
    if cfg.APIKey == "" {
        return nil
    }
    clientConfig := openai.DefaultConfig(cfg.APIKey)
    if cfg.BaseURL != "" {
        clientConfig.BaseURL = cfg.BaseURL
    }
    return &Assistant{
        client:  openai.NewClientWithConfig(clientConfig),
        model:   cfg.Model,
        ops:     ops,
        history: history,
    }
}

// ProcessMessage handles one chat turn for a session.  It loads the
// session history, asks the model to either answer directly or call a
// reservation tool, executes the chosen tool through the engine, and
// records both sides of the exchange back into the history.
func (a *Assistant) ProcessMessage(ctx context.Context, sessionID, requester, message string) (*Reply, error) {
    ctx, cancel := context.WithTimeout(ctx, requestTimeout)
    defer cancel()

    prompt, err := a.systemPrompt(ctx)
    if err != nil {
        return nil, fmt.Errorf("build system prompt: %w", err)
    }

    messages := []openai.ChatCompletionMessage{
        {Role: openai.ChatMessageRoleSystem, Content: prompt},
    }
    past, err := a.history.History(ctx, sessionID)
    if err != nil {
        // History is best effort; answer without it rather than failing.
        log.Printf("assistant: load history for session %s failed: %v", sessionID, err)
        past = nil
    }
    for _, m := range past {
        messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
    }
    messages = append(messages, openai.ChatCompletionMessage{
        Role:    openai.ChatMessageRoleUser,
        Content: message,
    })

    req := openai.ChatCompletionRequest{
        Model:       a.model,
        Temperature: 0.1,
        Messages:    messages,
        Tools:       reservationTools(),
    }
    resp, err := a.client.CreateChatCompletion(ctx, req)
    if err != nil {
        return nil, fmt.Errorf("chat completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return nil, fmt.Errorf("empty completion response")
    }

    choice := resp.Choices[0].Message
    reply := &Reply{Action: "info", Response: choice.Content}
    if len(choice.ToolCalls) > 0 {
        call := choice.ToolCalls[0]
        reply = a.dispatch(ctx, requester, call.Function.Name, call.Function.Arguments)
    }

    a.remember(ctx, sessionID, message, reply.Response)
    return reply, nil
}

// remember appends the user message and assistant reply to the session
// history.  Failures are logged and ignored; losing memory of a turn is
// preferable to failing the turn.
func (a *Assistant) remember(ctx context.Context, sessionID, userMsg, assistantMsg string) {
    if err := a.history.Append(ctx, sessionID, chat.Message{Role: "user", Content: userMsg}); err != nil {
        log.Printf("assistant: persist user message failed: %v", err)
        return
    }
    if err := a.history.Append(ctx, sessionID, chat.Message{Role: "assistant", Content: assistantMsg}); err != nil {
        log.Printf("assistant: persist assistant message failed: %v", err)
    }
}

// systemPrompt renders the instruction block: the live room catalog, the
// current date and time, relative-date anchors and the parsing rules the
// model must follow.
func (a *Assistant) systemPrompt(ctx context.Context) (string, error) {
    rooms, err := a.ops.Rooms(ctx)
    if err != nil {
        return "", err
    }
    var roomLines []string
    for _, r := range rooms {
        roomLines = append(roomLines, fmt.Sprintf("- %s (ID: %d, capacity: %d)", r.Name, r.ID, r.Capacity))
    }

    clk := a.ops.Clock()
    now := clk.Now()
    today := clk.FormatDate(now)
    tomorrow := clk.FormatDate(now.AddDate(0, 0, 1))
    hours := a.ops.Hours()

    return fmt.Sprintf(`You are the assistant for a meeting-room reservation system.
Interpret the user's message and call the matching tool to create, check or
cancel reservations or to find free rooms. Answer in the user's language.

Available rooms:
%s

Current date and time: %s %s
Business hours: %02d:00 to %02d:00.

Date and time parsing rules:
- "today" = %s
- "tomorrow" = %s
- "now" or "as soon as possible" = the next half-hour slot, %s
- Use 24-hour HH:MM times.
- When no duration or end time is given, assume one hour.

Only call a tool when the user clearly asks for a reservation operation;
otherwise reply conversationally.`,
        strings.Join(roomLines, "\n"),
        today, clk.FormatTime(now),
        hours.Open, hours.Close,
        today, tomorrow,
        clk.FormatTime(clock.NextHalfHourSlot(now))), nil
}
