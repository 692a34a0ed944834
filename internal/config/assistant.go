package config

// assistant.go loads settings for the LLM-backed reservation assistant.
// The assistant is optional: when no API key is configured the chat
// endpoint reports itself unavailable and the rest of the service keeps
// working.

import "os"

// AssistantConfig holds connection settings for the chat-completion
// provider used to translate natural language into reservation calls.
type AssistantConfig struct {
    APIKey  string // provider API key; empty disables the assistant
    BaseURL string // override for OpenAI-compatible gateways (empty = default)
    Model   string // chat model name
}

// LoadAssistant reads OPENAI_API_KEY, OPENAI_BASE_URL and OPENAI_MODEL.
// The model defaults to a small, inexpensive one since the assistant only
// has to pick a function and fill its arguments.
func LoadAssistant() AssistantConfig {
    model := os.Getenv("OPENAI_MODEL")
    if model == "" {
        model = "gpt-4o-mini"
    }
    return AssistantConfig{
        APIKey:  os.Getenv("OPENAI_API_KEY"),
        BaseURL: os.Getenv("OPENAI_BASE_URL"),
        Model:   model,
    }
}
