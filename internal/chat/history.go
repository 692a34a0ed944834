// Package chat stores per-session conversation history in Redis.  Each
// session maps to a Redis list of JSON-encoded messages with a sliding
// TTL, so idle conversations expire on their own.  When Redis is
// unavailable the store degrades to a no-op and the assistant simply
// answers without memory of earlier turns.
package chat

import (
    "context"
    "encoding/json"
    "fmt"

    "time"

    "github.com/redis/go-redis/v9"
)

// Message is one turn of a conversation.  Role follows the chat
// completion convention: "user", "assistant" or "system".
type Message struct {
    Role    string `json:"role"`
    Content string `json:"content"`
}

// Store persists chat history keyed by session id.
type Store struct {
    client *redis.Client
    ttl    time.Duration
}

// NewStore builds a Store.  client may be nil, in which case every
// operation is a no-op and History always returns an empty slice.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
    return &Store{client: client, ttl: ttl}
}

// key builds the Redis key for a session's history list.
func key(sessionID string) string {
    return "chat_history:" + sessionID
}

// Append adds one message to the session's history and refreshes the TTL
// so active conversations stay alive.
func (s *Store) Append(ctx context.Context, sessionID string, msg Message) error {
    if s.client == nil {
        return nil
    }
    payload, err := json.Marshal(msg)
    if err != nil {
        return fmt.Errorf("marshal chat message: %w", err)
    }
    k := key(sessionID)
    if err := s.client.RPush(ctx, k, payload).Err(); err != nil {
        return fmt.Errorf("append chat message: %w", err)
    }
    return s.client.Expire(ctx, k, s.ttl).Err()
}

// History returns the session's messages in insertion order.
func (s *Store) History(ctx context.Context, sessionID string) ([]Message, error) {
    if s.client == nil {
        return []Message{}, nil
    }
    raw, err := s.client.LRange(ctx, key(sessionID), 0, -1).Result()
    if err != nil {
        return nil, fmt.Errorf("load chat history: %w", err)
    }
    out := make([]Message, 0, len(raw))
    for _, item := range raw {
        var m Message
        if err := json.Unmarshal([]byte(item), &m); err != nil {
            // Skip a corrupt entry instead of losing the whole session.
            continue
        }
        out = append(out, m)
    }
    return out, nil
}

// Clear deletes the session's history.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
    if s.client == nil {
        return nil
    }
    return s.client.Del(ctx, key(sessionID)).Err()
}

// Count returns the number of stored messages for the session.
func (s *Store) Count(ctx context.Context, sessionID string) (int64, error) {
    if s.client == nil {
        return 0, nil
    }
    return s.client.LLen(ctx, key(sessionID)).Result()
}
